package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/pagecall/pagecall-drift/pkg/command"
	"github.com/pagecall/pagecall-drift/pkg/pagecall"
	"github.com/pagecall/pagecall-drift/pkg/platform"
)

func init() {
	RegisterCommand(&Command{
		Name:  "replay",
		Short: "Replay recorded payloads against a headless surface",
		Long: `Replay payloads posted by web content against a headless surface and
print every script the bridge evaluates in response.

Each non-empty input line is one payload. Lines starting with # are
skipped. A line of the form "@name payload" posts on channel name instead
of "pagecall". Reads stdin when no file is given.

The surface is routed through the built-in actions (ping, echo).

Usage:
  pagecall replay session.txt
  echo '{"id":"1","action":"ping"}' | pagecall replay`,
		Usage: "pagecall replay [file]",
		Run:   runReplay,
	})
}

func runReplay(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("replay takes at most one file\n\nUsage: pagecall replay [file]")
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	return replay(in, logger, pagecall.WithConfig(cfg))
}

// replay posts each payload read from in and writes evaluated scripts to
// stdout. Dispatch runs synchronously so output follows input order.
func replay(in io.Reader, logger *zap.Logger, opts ...pagecall.Option) error {
	router := command.NewRouter(logger)
	command.RegisterBuiltins(router)

	view := platform.NewHeadlessWebView(true)
	view.OnEvaluate = func(script string, err error) {
		if err != nil {
			fmt.Fprintf(stdout, "! %s (%v)\n", script, err)
			return
		}
		fmt.Fprintf(stdout, "< %s\n", script)
	}

	opts = append(opts,
		pagecall.WithLogger(logger),
		pagecall.WithExecutor(func(fn func()) { fn() }),
	)
	surface := pagecall.NewSurface(view, router, opts...)
	if err := surface.Err(); err != nil {
		return err
	}
	surface.Attach()
	defer surface.Dispose()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		channel := pagecall.ChannelName
		if strings.HasPrefix(text, "@") {
			name, payload, _ := strings.Cut(text[1:], " ")
			channel, text = name, strings.TrimSpace(payload)
		}
		fmt.Fprintf(stdout, "> %s\n", text)
		if !view.Post(channel, text) {
			logger.Debug("no handler for channel", zap.String("channel", channel), zap.Int("line", line))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read payloads: %w", err)
	}
	return nil
}
