package pagecall

import (
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pagecall/pagecall-drift/pkg/config"
	"github.com/pagecall/pagecall-drift/pkg/logging"
)

// Options configures surfaces and bridges.
type Options struct {
	// Assets supplies the bootstrap script. Defaults to BundledAssets.
	Assets fs.FS
	// Logger defaults to logging.Logger().
	Logger *zap.Logger
	// Executor runs handler invocations. Defaults to a new goroutine per
	// message.
	Executor func(fn func())
	// DispatchTimeout bounds each handler invocation. Zero means none.
	DispatchTimeout time.Duration
}

// Option mutates Options.
type Option func(*Options)

// WithAssets loads the bootstrap script from fsys instead of the bundled assets.
func WithAssets(fsys fs.FS) Option {
	return func(o *Options) { o.Assets = fsys }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithExecutor sets the function used to run handler invocations.
func WithExecutor(exec func(fn func())) Option {
	return func(o *Options) { o.Executor = exec }
}

// WithDispatchTimeout bounds each handler invocation.
func WithDispatchTimeout(d time.Duration) Option {
	return func(o *Options) { o.DispatchTimeout = d }
}

// WithConfig applies the bridge and asset settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(o *Options) {
		if cfg == nil {
			return
		}
		o.DispatchTimeout = cfg.Bridge.DispatchTimeout
		if cfg.Assets.Dir != "" {
			o.Assets = os.DirFS(cfg.Assets.Dir)
		}
	}
}

func buildOptions(opts []Option) Options {
	o := Options{
		Assets:   BundledAssets(),
		Executor: func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.Logger == nil {
		o.Logger = logging.Logger()
	}
	if o.Executor == nil {
		o.Executor = func(fn func()) { go fn() }
	}
	return o
}
