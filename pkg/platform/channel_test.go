package platform

import (
	stderrors "errors"
	"testing"
)

func TestHandleMethodCall(t *testing.T) {
	SetupTestBridge(t.Cleanup)
	ch := NewMethodChannel("test/method")
	ch.SetHandler(func(method string, args any) (any, error) {
		if method != "double" {
			return nil, ErrMethodNotFound
		}
		return args.(float64) * 2, nil
	})

	out, err := HandleMethodCall("test/method", "double", []byte("21"))
	if err != nil {
		t.Fatalf("HandleMethodCall: %v", err)
	}
	if string(out) != "42" {
		t.Errorf("result = %s, want 42", out)
	}

	if _, err := HandleMethodCall("test/method", "triple", []byte("1")); !stderrors.Is(err, ErrMethodNotFound) {
		t.Errorf("unknown method err = %v", err)
	}
	if _, err := HandleMethodCall("test/none", "double", nil); !stderrors.Is(err, ErrChannelNotFound) {
		t.Errorf("unknown channel err = %v", err)
	}
}

func TestInvokeWithoutBridge(t *testing.T) {
	t.Cleanup(ResetForTest)
	SetNativeBridge(nil)

	ch := NewMethodChannel("test/nobridge")
	if _, err := ch.Invoke("x", nil); !stderrors.Is(err, ErrPlatformUnavailable) {
		t.Errorf("Invoke err = %v, want ErrPlatformUnavailable", err)
	}
}

func TestEventChannel_Lifecycle(t *testing.T) {
	SetupTestBridge(t.Cleanup)
	ch := NewEventChannel("test/events")

	var events []any
	var gotErr error
	done := false
	sub := ch.Listen(EventHandler{
		OnEvent: func(data any) { events = append(events, data) },
		OnError: func(err error) { gotErr = err },
		OnDone:  func() { done = true },
	})

	if err := HandleEvent("test/events", []byte(`{"n":1}`)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if err := HandleEvent("test/events", []byte(`{bad`)); err == nil {
		t.Error("expected decode error")
	}
	if err := HandleEventError("test/events", "boom", "stream failed"); err != nil {
		t.Fatalf("HandleEventError: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	var chErr *ChannelError
	if !stderrors.As(gotErr, &chErr) || chErr.Code != "boom" {
		t.Errorf("OnError err = %v", gotErr)
	}

	if err := HandleEventDone("test/events"); err != nil {
		t.Fatalf("HandleEventDone: %v", err)
	}
	if !done || !sub.IsCanceled() {
		t.Error("expected subscription to be done and canceled")
	}

	if err := HandleEvent("test/events", []byte(`{"n":2}`)); err != nil {
		t.Fatalf("HandleEvent after done: %v", err)
	}
	if len(events) != 1 {
		t.Error("canceled subscription received an event")
	}
}

func TestHandleEvent_UnknownChannel(t *testing.T) {
	SetupTestBridge(t.Cleanup)
	if err := HandleEvent("test/unknown", []byte(`{}`)); !stderrors.Is(err, ErrChannelNotRegistered) {
		t.Errorf("err = %v, want ErrChannelNotRegistered", err)
	}
}

func TestDispatch(t *testing.T) {
	t.Cleanup(ResetForTest)
	RegisterDispatch(nil)

	if Dispatch(func() {}) {
		t.Error("Dispatch without a registered function should return false")
	}
	ran := false
	DispatchOrRun(func() { ran = true })
	if !ran {
		t.Error("DispatchOrRun should run inline without a dispatcher")
	}

	var queued []func()
	RegisterDispatch(func(cb func()) { queued = append(queued, cb) })
	if !Dispatch(func() {}) {
		t.Error("Dispatch should return true with a dispatcher")
	}
	if Dispatch(nil) {
		t.Error("Dispatch(nil) should return false")
	}
	if len(queued) != 1 {
		t.Errorf("queued %d callbacks, want 1", len(queued))
	}
}
