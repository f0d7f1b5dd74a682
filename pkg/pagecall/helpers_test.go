package pagecall

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/pagecall/pagecall-drift/pkg/errors"
	"github.com/pagecall/pagecall-drift/pkg/platform"
)

// syncExecutor runs handler invocations inline so tests are deterministic.
func syncExecutor(fn func()) { fn() }

// recordingHandler captures every payload it receives.
type recordingHandler struct {
	mu       sync.Mutex
	payloads []string
	fn       func(ctx context.Context, payload string, m Messenger) error
}

func (h *recordingHandler) HandleMessage(ctx context.Context, payload string, m Messenger) error {
	h.mu.Lock()
	h.payloads = append(h.payloads, payload)
	fn := h.fn
	h.mu.Unlock()
	if fn != nil {
		return fn(ctx, payload, m)
	}
	return nil
}

func (h *recordingHandler) received() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.payloads...)
}

// captureReports installs an error handler for the duration of the test.
type capturedReports struct {
	mu     sync.Mutex
	errs   []*errors.BridgeError
	panics []*errors.PanicError
}

func (c *capturedReports) HandleError(err *errors.BridgeError) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

func (c *capturedReports) HandlePanic(err *errors.PanicError) {
	c.mu.Lock()
	c.panics = append(c.panics, err)
	c.mu.Unlock()
}

func (c *capturedReports) kinds() []errors.ErrorKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]errors.ErrorKind, len(c.errs))
	for i, e := range c.errs {
		out[i] = e.Kind
	}
	return out
}

func captureReports(t *testing.T) *capturedReports {
	t.Helper()
	c := &capturedReports{}
	prev := errors.SetHandler(c)
	t.Cleanup(func() { errors.SetHandler(prev) })
	return c
}

// newTestSurface builds an attached-ready surface on a headless view with
// inline dispatch and execution.
func newTestSurface(t *testing.T, h Handler, opts ...Option) (*Surface, *platform.HeadlessWebView) {
	t.Helper()
	platform.SetupTestBridge(t.Cleanup)
	view := platform.NewHeadlessWebView(true)
	opts = append([]Option{WithExecutor(syncExecutor)}, opts...)
	return NewSurface(view, h, opts...), view
}

// envelope extracts the JSON argument of a client API call script.
func envelope(t *testing.T, script, fn string) gjson.Result {
	t.Helper()
	prefix := clientAPI + "&&" + clientAPI + "." + fn + "("
	if !strings.HasPrefix(script, prefix) || !strings.HasSuffix(script, ");") {
		t.Fatalf("script %q is not a %s call", script, fn)
	}
	body := strings.TrimSuffix(strings.TrimPrefix(script, prefix), ");")
	if !gjson.Valid(body) {
		t.Fatalf("script envelope is not valid JSON: %s", body)
	}
	return gjson.Parse(body)
}

// evaluatedScripts returns the scripts the view evaluated, in order.
func evaluatedScripts(v *platform.HeadlessWebView) []string {
	var out []string
	for _, e := range v.Evaluated() {
		out = append(out, e.Script)
	}
	return out
}
