package cmd

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/pretty"

	"github.com/pagecall/pagecall-drift/pkg/pagecall"
	"github.com/pagecall/pagecall-drift/pkg/platform"
)

func init() {
	RegisterCommand(&Command{
		Name:  "check",
		Short: "Validate configuration and bootstrap script",
		Long: `Validate pagecall.yaml and the PAGECALL_* environment, load the
PagecallNative.js bootstrap script and print the web view configuration a
surface applies.

Flags:
  --legacy    Print the configuration for hosts without content mode support

Usage:
  pagecall check
  pagecall --config ./conf check --legacy`,
		Usage: "pagecall check [--legacy]",
		Run:   runCheck,
	})
}

func runCheck(args []string) error {
	supportsContentMode := true
	for _, arg := range args {
		switch arg {
		case "--legacy":
			supportsContentMode = false
		default:
			return fmt.Errorf("unknown flag %q", arg)
		}
	}

	cfg, _, err := setup()
	if err != nil {
		return err
	}

	var assets fs.FS = pagecall.BundledAssets()
	source := "bundled"
	if cfg.Assets.Dir != "" {
		assets = os.DirFS(cfg.Assets.Dir)
		source = cfg.Assets.Dir
	}
	script, err := pagecall.LoadBootstrapScript(assets)
	if err != nil {
		return err
	}

	data, err := json.Marshal(platform.PagecallConfiguration(supportsContentMode))
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}

	fmt.Fprintf(stdout, "Config:     %s\n", configDir)
	fmt.Fprintf(stdout, "Log level:  %s\n", cfg.Log.Level)
	if cfg.Bridge.DispatchTimeout > 0 {
		fmt.Fprintf(stdout, "Timeout:    %s\n", cfg.Bridge.DispatchTimeout)
	} else {
		fmt.Fprintln(stdout, "Timeout:    none")
	}
	fmt.Fprintf(stdout, "Bootstrap:  %s (%s, %d bytes)\n", pagecall.BootstrapAsset, source, len(script))
	fmt.Fprintf(stdout, "Channel:    %s\n", pagecall.ChannelName)
	fmt.Fprintf(stdout, "View type:  %s\n", platform.NativeWebViewType)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Web view configuration:")
	stdout.Write(pretty.Pretty(data))
	return nil
}
