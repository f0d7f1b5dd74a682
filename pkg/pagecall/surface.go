package pagecall

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pagecall/pagecall-drift/pkg/errors"
	"github.com/pagecall/pagecall-drift/pkg/platform"
)

// ChannelName is the message channel shared by the bootstrap script and
// the surface.
const ChannelName = "pagecall"

// Surface is an embedded web surface. It configures its web view once,
// injects the bootstrap script, and while attached to the view tree owns
// the Bridge that receives messages posted on ChannelName.
//
// A surface whose bootstrap script failed to load is degraded: it never
// attaches a bridge, so web content has no native API to call.
//
// All methods are safe for concurrent use.
type Surface struct {
	view    platform.WebView
	handler Handler
	opts    []Option
	logger  *zap.Logger
	err     error // construction failure, fixed after NewSurface

	mu       sync.Mutex
	bridge   *Bridge                                  // guarded by mu
	sinks    map[string]platform.ScriptMessageHandler // guarded by mu
	disposed bool                                     // guarded by mu
}

// NewSurface configures view and injects the bootstrap script. It never
// fails outright; check Err for a degraded surface.
func NewSurface(view platform.WebView, handler Handler, opts ...Option) *Surface {
	o := buildOptions(opts)
	s := &Surface{
		view:    view,
		handler: handler,
		opts:    opts,
		logger:  o.Logger.Named("surface"),
		sinks:   make(map[string]platform.ScriptMessageHandler),
	}
	if view == nil {
		s.fail(ErrNoWebView)
		return s
	}

	supportsContentMode := false
	if cm, ok := view.(platform.ContentModeSupporter); ok {
		supportsContentMode = cm.SupportsContentMode()
	}
	view.Configure(platform.PagecallConfiguration(supportsContentMode))

	source, err := LoadBootstrapScript(o.Assets)
	if err != nil {
		s.fail(err)
		return s
	}
	view.AddUserScript(platform.UserScript{
		Source:        source,
		InjectionTime: platform.InjectAtDocumentStart,
		MainFrameOnly: false,
	})
	return s
}

func (s *Surface) fail(err error) {
	s.err = err
	s.logger.Error("failed to add PagecallNative script", zap.Error(err))
	errors.Report(&errors.BridgeError{
		Op:      "pagecall.NewSurface",
		Kind:    errors.KindInit,
		Channel: ChannelName,
		Err:     err,
	})
}

// Err returns the construction error of a degraded surface, or nil.
func (s *Surface) Err() error {
	return s.err
}

// View returns the wrapped web view.
func (s *Surface) View() platform.WebView {
	return s.view
}

// Bridge returns the attached bridge, or nil.
func (s *Surface) Bridge() *Bridge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bridge
}

// Attached reports whether the surface currently owns a bridge.
func (s *Surface) Attached() bool {
	return s.Bridge() != nil
}

// Attach is called when the surface enters the view tree. It creates the
// bridge and registers the channel sink unless a bridge already exists.
func (s *Surface) Attach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil || s.disposed || s.bridge != nil {
		return
	}
	s.bridge = NewBridge(s, s.handler, s.opts...)
	s.registerLocked(ChannelName, platform.ScriptMessageHandlerFunc(s.didReceiveScriptMessage))
}

// registerLocked installs sink for name, removing any previous sink first.
func (s *Surface) registerLocked(name string, sink platform.ScriptMessageHandler) {
	if _, ok := s.sinks[name]; ok {
		s.view.RemoveScriptMessageHandler(name)
		delete(s.sinks, name)
	}
	s.view.AddScriptMessageHandler(name, sink)
	s.sinks[name] = sink
}

// Detach is called when the surface leaves the view tree. It disconnects
// and releases the bridge and unregisters the channel sink. Safe to call
// repeatedly.
func (s *Surface) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
}

func (s *Surface) detachLocked() {
	if s.bridge != nil {
		s.bridge.Disconnect()
		s.bridge = nil
	}
	for name := range s.sinks {
		s.view.RemoveScriptMessageHandler(name)
		delete(s.sinks, name)
	}
}

// Dispose detaches the surface for good; later Attach calls are no-ops.
func (s *Surface) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
	s.disposed = true
}

func (s *Surface) didReceiveScriptMessage(msg platform.ScriptMessage) {
	s.ReceiveChannelMessage(msg.Name, msg.Body)
}

// ReceiveChannelMessage forwards a string body posted on ChannelName to the
// attached bridge. Other channels, non-string bodies and messages arriving
// while detached are ignored.
func (s *Surface) ReceiveChannelMessage(name string, body any) {
	if name != ChannelName {
		return
	}
	payload, ok := body.(string)
	if !ok {
		s.logger.Debug("ignoring non-string message body", zap.String("type", fmt.Sprintf("%T", body)))
		return
	}
	b := s.Bridge()
	if b == nil {
		return
	}
	b.HandleMessage(payload)
}

// EvaluateScript evaluates script in the surface's web content.
func (s *Surface) EvaluateScript(script string, completion func(result any, err error)) {
	if s.view == nil {
		return
	}
	s.view.EvaluateScript(script, completion)
}
