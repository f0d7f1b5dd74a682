package pagecall

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/pagecall/pagecall-drift/pkg/errors"
	"github.com/pagecall/pagecall-drift/pkg/platform"
)

func newTestBridge(t *testing.T, h Handler, opts ...Option) (*Bridge, *platform.HeadlessWebView) {
	t.Helper()
	platform.SetupTestBridge(t.Cleanup)
	view := platform.NewHeadlessWebView(false)
	opts = append([]Option{WithExecutor(syncExecutor)}, opts...)
	return NewBridge(view, h, opts...), view
}

func TestBridge_StateMachine(t *testing.T) {
	b, _ := newTestBridge(t, &recordingHandler{})

	if b.State() != StateAttached {
		t.Fatalf("new bridge state = %v, want attached", b.State())
	}
	b.Disconnect()
	if b.State() != StateDisconnected {
		t.Fatalf("state after Disconnect = %v", b.State())
	}
	b.Disconnect()
	if b.State() != StateDisconnected {
		t.Error("Disconnect should be idempotent")
	}

	tests := []struct {
		state State
		want  string
	}{
		{StateUnattached, "unattached"},
		{StateAttached, "attached"},
		{StateDisconnected, "disconnected"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestBridge_OperationsAfterDisconnectAreNoops(t *testing.T) {
	h := &recordingHandler{}
	b, view := newTestBridge(t, h)
	b.Disconnect()

	b.HandleMessage("stray")
	b.EvaluateScript("stray()")
	if err := b.Emit("event", nil); !stderrors.Is(err, ErrDisconnected) {
		t.Errorf("Emit err = %v, want ErrDisconnected", err)
	}
	if err := b.Respond("1", "ok", nil); !stderrors.Is(err, ErrDisconnected) {
		t.Errorf("Respond err = %v, want ErrDisconnected", err)
	}

	if len(h.received()) != 0 {
		t.Error("handler invoked after Disconnect")
	}
	if len(view.Evaluated()) != 0 {
		t.Error("script evaluated after Disconnect")
	}
}

func TestBridge_Respond(t *testing.T) {
	h := &recordingHandler{fn: func(_ context.Context, payload string, m Messenger) error {
		return m.Respond("7", map[string]any{"echo": payload}, nil)
	}}
	b, view := newTestBridge(t, h)

	b.HandleMessage("hello")

	scripts := evaluatedScripts(view)
	if len(scripts) != 1 {
		t.Fatalf("evaluated %d scripts, want 1", len(scripts))
	}
	env := envelope(t, scripts[0], "__respond")
	if env.Get("id").String() != "7" {
		t.Errorf("id = %q", env.Get("id").String())
	}
	if env.Get("result.echo").String() != "hello" {
		t.Errorf("result = %s", env.Get("result").Raw)
	}
	if env.Get("error").Exists() {
		t.Error("successful response should not carry an error")
	}
}

func TestBridge_RespondWithError(t *testing.T) {
	b, view := newTestBridge(t, nil)

	err := b.Respond("9", nil, NewResponseError(CodeUnknownAction, "no such action"))
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	env := envelope(t, evaluatedScripts(view)[0], "__respond")
	if env.Get("error.code").String() != CodeUnknownAction {
		t.Errorf("error.code = %q", env.Get("error.code").String())
	}
	if env.Get("result").Exists() {
		t.Error("error response should not carry a result")
	}
}

func TestBridge_NilHandler(t *testing.T) {
	b, view := newTestBridge(t, nil)
	b.HandleMessage("ping")
	if len(view.Evaluated()) != 0 {
		t.Error("nil handler should not produce scripts")
	}
}

func TestBridge_HandlerPanicIsContained(t *testing.T) {
	reports := captureReports(t)
	h := &recordingHandler{fn: func(context.Context, string, Messenger) error {
		panic("handler bug")
	}}
	b, view := newTestBridge(t, h)

	b.HandleMessage("boom")

	scripts := evaluatedScripts(view)
	if len(scripts) != 1 {
		t.Fatalf("evaluated %d scripts, want 1", len(scripts))
	}
	env := envelope(t, scripts[0], "__emit")
	if env.Get("data.code").String() != CodePanic || env.Get("data.message").String() != "handler bug" {
		t.Errorf("error event = %s", env.Raw)
	}
	reports.mu.Lock()
	panics := len(reports.panics)
	reports.mu.Unlock()
	if panics != 1 {
		t.Errorf("reported %d panics, want 1", panics)
	}
	if kinds := reports.kinds(); len(kinds) != 1 || kinds[0] != errors.KindPanic {
		t.Errorf("reported kinds = %v, want [panic]", kinds)
	}
	if b.State() != StateAttached {
		t.Error("a handler panic must not disconnect the bridge")
	}
}

func TestBridge_DispatchTimeout(t *testing.T) {
	captureReports(t)
	h := &recordingHandler{fn: func(ctx context.Context, _ string, _ Messenger) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	b, view := newTestBridge(t, h, WithDispatchTimeout(10*time.Millisecond))

	b.HandleMessage("slow")

	env := envelope(t, evaluatedScripts(view)[0], "__emit")
	if env.Get("data.code").String() != CodeTimeout {
		t.Errorf("code = %q, want %q", env.Get("data.code").String(), CodeTimeout)
	}
}

func TestBridge_EvaluationFailureIsLoggedOnly(t *testing.T) {
	reports := captureReports(t)
	b, view := newTestBridge(t, nil)
	view.FailEvaluation(stderrors.New("ReferenceError: PagecallNative is not defined"))

	if err := b.Emit("connected", true); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if len(view.Evaluated()) != 1 {
		t.Fatal("script should have been submitted once, with no retry")
	}
	kinds := reports.kinds()
	if len(kinds) != 1 || kinds[0] != errors.KindScript {
		t.Errorf("reported kinds = %v, want [script]", kinds)
	}
	if id := reports.errs[0].BridgeID; id != b.ID() {
		t.Errorf("report BridgeID = %q, want %q", id, b.ID())
	}
	if b.State() != StateAttached {
		t.Error("evaluation failure must not disconnect the bridge")
	}
}

func TestBridge_AsyncResultAfterDisconnectDropped(t *testing.T) {
	platform.SetupTestBridge(t.Cleanup)
	view := platform.NewHeadlessWebView(false)

	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan error, 1)
	h := HandlerFunc(func(ctx context.Context, _ string, m Messenger) error {
		close(started)
		<-release
		finished <- m.Respond("1", "late", nil)
		return nil
	})
	b := NewBridge(view, h)

	b.HandleMessage("work")
	<-started
	b.Disconnect()
	close(release)

	select {
	case err := <-finished:
		if !stderrors.Is(err, ErrDisconnected) {
			t.Errorf("Respond after Disconnect err = %v, want ErrDisconnected", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not finish")
	}
	if len(view.Evaluated()) != 0 {
		t.Error("stale result was delivered after Disconnect")
	}
}

func TestBridge_DisconnectCancelsContext(t *testing.T) {
	platform.SetupTestBridge(t.Cleanup)
	reports := captureReports(t)
	view := platform.NewHeadlessWebView(false)

	var wg sync.WaitGroup
	wg.Add(1)
	started := make(chan struct{})
	h := HandlerFunc(func(ctx context.Context, _ string, _ Messenger) error {
		defer wg.Done()
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	b := NewBridge(view, h)

	b.HandleMessage("wait")
	<-started
	b.Disconnect()
	wg.Wait()

	if len(view.Evaluated()) != 0 {
		t.Error("cancellation after Disconnect should not be delivered")
	}
	if kinds := reports.kinds(); len(kinds) != 0 {
		t.Errorf("cancellation after Disconnect should not be reported, got %v", kinds)
	}
}

func TestBridge_ScriptsScheduledThroughDispatch(t *testing.T) {
	platform.SetupTestBridge(t.Cleanup)
	var queued []func()
	platform.RegisterDispatch(func(cb func()) { queued = append(queued, cb) })
	view := platform.NewHeadlessWebView(false)
	b := NewBridge(view, nil, WithExecutor(syncExecutor))

	if err := b.Emit("tick", 1); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(view.Evaluated()) != 0 {
		t.Fatal("script evaluated before the UI thread ran")
	}

	b.Disconnect()
	for _, cb := range queued {
		cb()
	}
	if len(view.Evaluated()) != 0 {
		t.Error("queued script ran after Disconnect")
	}
}

func TestBridge_RespondWithUnencodableResult(t *testing.T) {
	reports := captureReports(t)
	b, view := newTestBridge(t, nil)

	if err := b.Respond("7", make(chan int), nil); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	scripts := evaluatedScripts(view)
	if len(scripts) != 1 {
		t.Fatalf("evaluated %d scripts, want 1", len(scripts))
	}
	env := envelope(t, scripts[0], "__respond")
	if env.Get("id").String() != "7" {
		t.Errorf("id = %q, want 7", env.Get("id").String())
	}
	if env.Get("result").Exists() {
		t.Errorf("unexpected result in %s", env.Raw)
	}
	if code := env.Get("error.code").String(); code != CodeHandlerFailed {
		t.Errorf("error.code = %q, want %q", code, CodeHandlerFailed)
	}
	if kinds := reports.kinds(); len(kinds) != 1 || kinds[0] != errors.KindParsing {
		t.Errorf("reported kinds = %v, want [parsing]", kinds)
	}
}
