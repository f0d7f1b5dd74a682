// Command pagecall inspects and exercises the Pagecall web surface without
// a device.
package main

import (
	"fmt"
	"os"

	"github.com/pagecall/pagecall-drift/cmd/pagecall/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
