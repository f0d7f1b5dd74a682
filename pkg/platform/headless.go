package platform

import "sync"

// EvaluatedScript records one EvaluateScript call on a [HeadlessWebView].
type EvaluatedScript struct {
	Script string
	Err    error
}

// HeadlessWebView is an in-memory [WebView]. It records what the surface
// asks of it and lets callers play the role of web content with Post.
// It is used by tests and by the replay tool.
//
// All methods are safe for concurrent use.
type HeadlessWebView struct {
	mu            sync.Mutex
	configs       []Configuration
	scripts       []UserScript
	handlers      map[string]ScriptMessageHandler
	evaluated     []EvaluatedScript
	contentMode   bool
	evaluateError error

	// OnEvaluate, if set, is called after each EvaluateScript with the
	// script and the error the completion received.
	OnEvaluate func(script string, err error)
}

var (
	_ WebView              = (*HeadlessWebView)(nil)
	_ ContentModeSupporter = (*HeadlessWebView)(nil)
)

// NewHeadlessWebView returns a headless view. supportsContentMode controls
// what [HeadlessWebView.SupportsContentMode] reports.
func NewHeadlessWebView(supportsContentMode bool) *HeadlessWebView {
	return &HeadlessWebView{
		handlers:    make(map[string]ScriptMessageHandler),
		contentMode: supportsContentMode,
	}
}

// SupportsContentMode implements [ContentModeSupporter].
func (v *HeadlessWebView) SupportsContentMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.contentMode
}

// Configure records cfg.
func (v *HeadlessWebView) Configure(cfg Configuration) {
	v.mu.Lock()
	v.configs = append(v.configs, cfg)
	v.mu.Unlock()
}

// AddUserScript records script.
func (v *HeadlessWebView) AddUserScript(script UserScript) {
	v.mu.Lock()
	v.scripts = append(v.scripts, script)
	v.mu.Unlock()
}

// AddScriptMessageHandler registers h for name, replacing any previous one.
func (v *HeadlessWebView) AddScriptMessageHandler(name string, h ScriptMessageHandler) {
	v.mu.Lock()
	v.handlers[name] = h
	v.mu.Unlock()
}

// RemoveScriptMessageHandler unregisters name.
func (v *HeadlessWebView) RemoveScriptMessageHandler(name string) {
	v.mu.Lock()
	delete(v.handlers, name)
	v.mu.Unlock()
}

// EvaluateScript records script and completes with the error set by
// FailEvaluation, if any. The completion runs synchronously.
func (v *HeadlessWebView) EvaluateScript(script string, completion func(result any, err error)) {
	v.mu.Lock()
	err := v.evaluateError
	v.evaluated = append(v.evaluated, EvaluatedScript{Script: script, Err: err})
	hook := v.OnEvaluate
	v.mu.Unlock()

	if completion != nil {
		completion(nil, err)
	}
	if hook != nil {
		hook(script, err)
	}
}

// FailEvaluation makes later EvaluateScript calls complete with err.
// Pass nil to make them succeed again.
func (v *HeadlessWebView) FailEvaluation(err error) {
	v.mu.Lock()
	v.evaluateError = err
	v.mu.Unlock()
}

// Post delivers body on channel name as if web content had posted it and
// reports whether a handler was registered for name.
func (v *HeadlessWebView) Post(name string, body any) bool {
	v.mu.Lock()
	h := v.handlers[name]
	v.mu.Unlock()
	if h == nil {
		return false
	}
	h.DidReceiveScriptMessage(ScriptMessage{Name: name, Body: body, MainFrame: true})
	return true
}

// Configurations returns every configuration applied so far.
func (v *HeadlessWebView) Configurations() []Configuration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Configuration(nil), v.configs...)
}

// UserScripts returns the injected user scripts.
func (v *HeadlessWebView) UserScripts() []UserScript {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]UserScript(nil), v.scripts...)
}

// HasHandler reports whether a message handler is registered for name.
func (v *HeadlessWebView) HasHandler(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.handlers[name]
	return ok
}

// Handler returns the message handler registered for name, or nil.
func (v *HeadlessWebView) Handler(name string) ScriptMessageHandler {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.handlers[name]
}

// Evaluated returns every script evaluated so far.
func (v *HeadlessWebView) Evaluated() []EvaluatedScript {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]EvaluatedScript(nil), v.evaluated...)
}
