package cmd

import "fmt"

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  `Print the pagecall CLI version and build time.`,
		Usage: "pagecall version",
		Run:   runVersion,
	})
}

func runVersion(args []string) error {
	fmt.Fprintf(stdout, "pagecall version %s (built %s)\n", Version, BuildTime)
	return nil
}
