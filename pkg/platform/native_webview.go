package platform

import (
	"fmt"
	"sync"

	"github.com/pagecall/pagecall-drift/pkg/errors"
)

// NativeWebViewType is the platform view type of [NativeWebView].
const NativeWebViewType = "pagecall_webview"

type nativeWebViewFactory struct{}

func (nativeWebViewFactory) ViewType() string {
	return NativeWebViewType
}

func (nativeWebViewFactory) Create(viewID int64, params map[string]any) (PlatformView, error) {
	return &NativeWebView{
		viewID:   viewID,
		handlers: make(map[string]ScriptMessageHandler),
	}, nil
}

// NativeWebView is a [WebView] backed by a host web view. Operations are
// forwarded over the platform view channel; script messages arrive as
// "onScriptMessage" view events.
//
// All methods are safe for concurrent use.
type NativeWebView struct {
	viewID int64

	mu       sync.RWMutex
	handlers map[string]ScriptMessageHandler // guarded by mu
	disposed bool                            // guarded by mu
}

var _ WebView = (*NativeWebView)(nil)

// NewNativeWebView creates a host web view through the platform view registry.
func NewNativeWebView() (*NativeWebView, error) {
	view, err := GetPlatformViewRegistry().Create(NativeWebViewType, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("create web view: %w", err)
	}
	webView, ok := view.(*NativeWebView)
	if !ok {
		return nil, fmt.Errorf("unexpected view type: %T", view)
	}
	return webView, nil
}

// ViewID returns the platform view ID.
func (v *NativeWebView) ViewID() int64 {
	return v.viewID
}

// ViewType returns [NativeWebViewType].
func (v *NativeWebView) ViewType() string {
	return NativeWebViewType
}

// Dispose marks the view disposed and drops its message handlers.
// Call [PlatformViewRegistry.Dispose] to also release the native view.
func (v *NativeWebView) Dispose() {
	v.mu.Lock()
	v.disposed = true
	v.handlers = make(map[string]ScriptMessageHandler)
	v.mu.Unlock()
}

func (v *NativeWebView) invoke(op, method string, args map[string]any) (any, error) {
	v.mu.RLock()
	disposed := v.disposed
	v.mu.RUnlock()
	if disposed {
		return nil, ErrDisposed
	}
	result, err := GetPlatformViewRegistry().InvokeViewMethod(v.viewID, method, args)
	if err != nil {
		errors.Report(&errors.BridgeError{
			Op:      op,
			Kind:    errors.KindPlatform,
			Channel: platformViewsChannel,
			Err:     err,
		})
	}
	return result, err
}

// Configure sends cfg to the host view.
func (v *NativeWebView) Configure(cfg Configuration) {
	v.invoke("platform.NativeWebView.Configure", "configure", map[string]any{
		"configuration": cfg,
	})
}

// AddUserScript registers script with the host's content controller.
func (v *NativeWebView) AddUserScript(script UserScript) {
	v.invoke("platform.NativeWebView.AddUserScript", "addUserScript", map[string]any{
		"source":           script.Source,
		"injectionTime":    string(script.InjectionTime),
		"forMainFrameOnly": script.MainFrameOnly,
	})
}

// AddScriptMessageHandler registers h for name on the Go side and asks the
// host to forward messages posted on name.
func (v *NativeWebView) AddScriptMessageHandler(name string, h ScriptMessageHandler) {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	v.handlers[name] = h
	v.mu.Unlock()
	v.invoke("platform.NativeWebView.AddScriptMessageHandler", "addScriptMessageHandler", map[string]any{
		"name": name,
	})
}

// RemoveScriptMessageHandler unregisters name on both sides.
func (v *NativeWebView) RemoveScriptMessageHandler(name string) {
	v.mu.Lock()
	_, ok := v.handlers[name]
	delete(v.handlers, name)
	v.mu.Unlock()
	if !ok {
		return
	}
	v.invoke("platform.NativeWebView.RemoveScriptMessageHandler", "removeScriptMessageHandler", map[string]any{
		"name": name,
	})
}

// EvaluateScript asks the host to evaluate script. The channel call runs on
// its own goroutine; completion is dispatched to the UI thread.
func (v *NativeWebView) EvaluateScript(script string, completion func(result any, err error)) {
	go func() {
		result, err := v.invoke("platform.NativeWebView.EvaluateScript", "evaluateJavaScript", map[string]any{
			"script": script,
		})
		if completion != nil {
			DispatchOrRun(func() { completion(result, err) })
		}
	}()
}

// SupportsContentMode asks the host whether it honours a preferred content
// mode. Errors are treated as no support.
func (v *NativeWebView) SupportsContentMode() bool {
	result, err := v.invoke("platform.NativeWebView.SupportsContentMode", "supportsContentMode", nil)
	if err != nil {
		return false
	}
	supported, _ := result.(bool)
	return supported
}

// handleViewEvent processes events from the host view.
func (v *NativeWebView) handleViewEvent(method string, args map[string]any) {
	switch method {
	case "onScriptMessage":
		name, _ := args["name"].(string)
		mainFrame, _ := args["mainFrame"].(bool)
		v.mu.RLock()
		h := v.handlers[name]
		v.mu.RUnlock()
		if h == nil {
			return
		}
		msg := ScriptMessage{Name: name, Body: args["body"], MainFrame: mainFrame}
		DispatchOrRun(func() { h.DidReceiveScriptMessage(msg) })
	default:
		// Other view events have no Go-side consumer.
	}
}

func init() {
	GetPlatformViewRegistry().RegisterFactory(nativeWebViewFactory{})
}
