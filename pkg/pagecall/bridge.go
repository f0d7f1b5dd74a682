package pagecall

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pagecall/pagecall-drift/pkg/errors"
	"github.com/pagecall/pagecall-drift/pkg/platform"
)

// State is the lifecycle state of a Bridge.
type State int

const (
	// StateUnattached is the zero State; constructed bridges are attached.
	StateUnattached State = iota
	// StateAttached means the bridge accepts messages and delivers scripts.
	StateAttached
	// StateDisconnected is terminal.
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateAttached:
		return "attached"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unattached"
	}
}

// ScriptEvaluator evaluates script in web content. completion, when
// non-nil, receives the evaluation result or error.
type ScriptEvaluator interface {
	EvaluateScript(script string, completion func(result any, err error))
}

// Messenger is how a Handler talks back to web content.
type Messenger interface {
	// Emit pushes event with data to listeners registered through
	// PagecallNative.on.
	Emit(event string, data any) error
	// Respond settles the PagecallNative.call promise with request id.
	// A non-nil err rejects it.
	Respond(id string, result any, err error) error
}

// Handler processes one payload posted by web content. It runs off the UI
// thread; ctx is canceled when the bridge disconnects. A returned error is
// delivered to web content as an ErrorEvent.
type Handler interface {
	HandleMessage(ctx context.Context, payload string, m Messenger) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, payload string, m Messenger) error

// HandleMessage calls f.
func (f HandlerFunc) HandleMessage(ctx context.Context, payload string, m Messenger) error {
	return f(ctx, payload, m)
}

// Bridge dispatches payloads from one surface to a Handler and delivers
// results back as evaluated script. A disconnected bridge stays
// disconnected; attach a new one instead.
//
// All methods are safe for concurrent use and never panic.
type Bridge struct {
	id      string
	handler Handler
	logger  *zap.Logger
	execute func(fn func())
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	surface ScriptEvaluator // guarded by mu; nil once disconnected
	state   State           // guarded by mu
}

var _ Messenger = (*Bridge)(nil)

// NewBridge returns an attached bridge evaluating scripts through surface.
// The bridge does not own surface.
func NewBridge(surface ScriptEvaluator, handler Handler, opts ...Option) *Bridge {
	o := buildOptions(opts)
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		id:      id,
		handler: handler,
		logger:  o.Logger.Named("bridge").With(zap.String("bridge_id", id)),
		execute: o.Executor,
		timeout: o.DispatchTimeout,
		ctx:     ctx,
		cancel:  cancel,
		surface: surface,
		state:   StateAttached,
	}
	b.logger.Debug("bridge attached")
	return b
}

// ID returns the bridge's unique identifier.
func (b *Bridge) ID() string {
	return b.id
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// HandleMessage hands payload to the handler on the bridge executor and
// returns immediately. Calls after Disconnect are dropped.
func (b *Bridge) HandleMessage(payload string) {
	if b.State() != StateAttached {
		b.logger.Debug("dropping message on detached bridge")
		return
	}
	if b.handler == nil {
		return
	}
	defer errors.Recover("pagecall.Bridge.HandleMessage")
	b.execute(func() { b.dispatch(payload) })
}

func (b *Bridge) dispatch(payload string) {
	ctx, cancel := b.ctx, context.CancelFunc(func() {})
	if b.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
	}
	defer cancel()

	err := b.invoke(ctx, payload)
	if err == nil {
		return
	}
	if b.State() != StateAttached {
		b.logger.Debug("discarding dispatch error after disconnect", zap.Error(err))
		return
	}

	kind := errors.KindDispatch
	if AsResponseError(err).Code == CodePanic {
		kind = errors.KindPanic
	}
	errors.Report(&errors.BridgeError{
		Op:       "pagecall.Bridge.dispatch",
		Kind:     kind,
		Channel:  ChannelName,
		BridgeID: b.id,
		Err:      err,
	})
	if emitErr := b.Emit(ErrorEvent, AsResponseError(err)); emitErr != nil && !stderrors.Is(emitErr, ErrDisconnected) {
		b.logger.Warn("failed to deliver dispatch error", zap.Error(emitErr))
	}
}

func (b *Bridge) invoke(ctx context.Context, payload string) (err error) {
	defer errors.RecoverWithCallback("pagecall.Bridge.dispatch", func(r any) {
		err = panicError(r)
	})
	return b.handler.HandleMessage(ctx, payload, b)
}

// Emit delivers event with data to web content.
func (b *Bridge) Emit(event string, data any) error {
	if b.State() != StateAttached {
		return ErrDisconnected
	}
	script, err := emitScript(event, data)
	if err != nil {
		return err
	}
	b.EvaluateScript(script)
	return nil
}

// Respond delivers the response to request id. If result or err cannot be
// encoded, the call is rejected with CodeHandlerFailed instead so it still
// settles; the encoding error is logged and reported.
func (b *Bridge) Respond(id string, result any, err error) error {
	if b.State() != StateAttached {
		return ErrDisconnected
	}
	script, encErr := respondScript(id, result, err)
	if encErr != nil {
		b.logger.Warn("failed to encode response", zap.String("id", id), zap.Error(encErr))
		errors.Report(&errors.BridgeError{
			Op:       "pagecall.Bridge.Respond",
			Kind:     errors.KindParsing,
			Channel:  ChannelName,
			BridgeID: b.id,
			Err:      encErr,
		})
		var fallbackErr error
		script, fallbackErr = respondScript(id, nil, WrapResponseError(CodeHandlerFailed, encErr))
		if fallbackErr != nil {
			return encErr
		}
	}
	b.EvaluateScript(script)
	return nil
}

// EvaluateScript schedules script on the UI thread. Delivery is best
// effort: it is skipped if the bridge disconnects first, and evaluation
// errors are logged and reported, not returned.
func (b *Bridge) EvaluateScript(script string) {
	if b.State() != StateAttached {
		return
	}
	platform.DispatchOrRun(func() {
		b.mu.RLock()
		surface, state := b.surface, b.state
		b.mu.RUnlock()
		if state != StateAttached || surface == nil {
			b.logger.Debug("dropping script for detached bridge")
			return
		}
		surface.EvaluateScript(script, b.evaluated)
	})
}

func (b *Bridge) evaluated(_ any, err error) {
	if err == nil {
		return
	}
	b.logger.Warn("script evaluation failed", zap.Error(err))
	errors.Report(&errors.BridgeError{
		Op:       "pagecall.Bridge.EvaluateScript",
		Kind:     errors.KindScript,
		Channel:  ChannelName,
		BridgeID: b.id,
		Err:      err,
	})
}

// Disconnect cancels in-flight handler contexts, drops the surface
// reference and moves the bridge to StateDisconnected. It is idempotent.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	if b.state == StateDisconnected {
		b.mu.Unlock()
		return
	}
	b.state = StateDisconnected
	b.surface = nil
	b.mu.Unlock()

	b.cancel()
	b.logger.Debug("bridge disconnected")
}
