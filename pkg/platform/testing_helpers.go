package platform

import "sync"

// RecordedCall is one native method invocation captured by a [RecordingBridge].
type RecordedCall struct {
	Channel string
	Method  string
	Args    any // JSON-decoded
}

// RecordingBridge is a NativeBridge that records every invocation and
// answers with Results[method], or nil.
type RecordingBridge struct {
	mu      sync.Mutex
	calls   []RecordedCall
	Results map[string]any
	// Fail, when set, is consulted per call; a non-nil error is returned to
	// the caller. The method argument is the view method for invokeViewMethod.
	Fail func(channel, method string) error
}

// InvokeMethod records the call and returns the canned result.
func (b *RecordingBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	decoded, _ := DefaultCodec.Decode(args)
	b.mu.Lock()
	b.calls = append(b.calls, RecordedCall{Channel: channel, Method: method, Args: decoded})
	fail := b.Fail
	result := b.Results[viewMethodKey(method, decoded)]
	b.mu.Unlock()

	if fail != nil {
		if err := fail(channel, viewMethodKey(method, decoded)); err != nil {
			return nil, err
		}
	}
	return DefaultCodec.Encode(result)
}

// StartEventStream is a no-op.
func (b *RecordingBridge) StartEventStream(string) error { return nil }

// StopEventStream is a no-op.
func (b *RecordingBridge) StopEventStream(string) error { return nil }

// Calls returns the recorded invocations.
func (b *RecordingBridge) Calls() []RecordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedCall(nil), b.calls...)
}

// ViewCalls returns the view methods invoked through invokeViewMethod, in order.
func (b *RecordingBridge) ViewCalls() []RecordedCall {
	var out []RecordedCall
	for _, c := range b.Calls() {
		if c.Method == "invokeViewMethod" {
			args, _ := c.Args.(map[string]any)
			m, _ := args["method"].(string)
			out = append(out, RecordedCall{Channel: c.Channel, Method: m, Args: args})
		}
	}
	return out
}

// viewMethodKey names invokeViewMethod calls by their view method so canned
// results can target e.g. "supportsContentMode".
func viewMethodKey(method string, args any) string {
	if method != "invokeViewMethod" {
		return method
	}
	m, _ := args.(map[string]any)
	if name, ok := m["method"].(string); ok {
		return name
	}
	return method
}

// SetupTestBridge installs a [RecordingBridge] and a synchronous dispatch
// function. cleanup is typically testing.T.Cleanup; it registers
// ResetForTest.
//
//	bridge := platform.SetupTestBridge(t.Cleanup)
func SetupTestBridge(cleanup func(func())) *RecordingBridge {
	bridge := &RecordingBridge{Results: map[string]any{}}
	SetNativeBridge(bridge)
	RegisterDispatch(func(cb func()) { cb() })
	cleanup(ResetForTest)
	return bridge
}
