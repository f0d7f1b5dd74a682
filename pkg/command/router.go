// Package command decodes the JSON envelopes the PagecallNative client
// posts and routes them to registered native actions.
//
// Envelope:
//
//	{"id": "12", "action": "enterRoom", "payload": {...}}
//
// A message with an id is a call and always gets exactly one response. A
// message without an id is a notification and never does.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	perrors "github.com/pagecall/pagecall-drift/pkg/errors"
	"github.com/pagecall/pagecall-drift/pkg/logging"
	"github.com/pagecall/pagecall-drift/pkg/pagecall"
)

var (
	// ErrInvalidMessage is returned for payloads that are not a JSON envelope.
	ErrInvalidMessage = errors.New("command: invalid message")

	// ErrUnknownAction is returned for actions with no registered handler.
	ErrUnknownAction = errors.New("command: unknown action")
)

// ActionFunc performs one action. The returned value is JSON-encoded into
// the response. Return a *pagecall.ResponseError to control the code web
// content sees.
type ActionFunc func(ctx context.Context, payload gjson.Result) (any, error)

// Request is a decoded envelope.
type Request struct {
	ID      string
	Action  string
	Payload gjson.Result
}

// IsCall reports whether the request expects a response.
func (r Request) IsCall() bool {
	return r.ID != ""
}

// Decode parses payload into a Request.
func Decode(payload string) (Request, error) {
	if !gjson.Valid(payload) {
		return Request{}, fmt.Errorf("%w: not JSON", ErrInvalidMessage)
	}
	root := gjson.Parse(payload)
	if !root.IsObject() {
		return Request{}, fmt.Errorf("%w: envelope must be an object", ErrInvalidMessage)
	}
	id, action := root.Get("id"), root.Get("action")
	if id.Exists() && id.Type != gjson.String && id.Type != gjson.Number {
		return Request{}, fmt.Errorf("%w: id must be a string or number", ErrInvalidMessage)
	}
	req := Request{ID: id.String(), Action: action.String(), Payload: root.Get("payload")}
	if action.Type != gjson.String || req.Action == "" {
		return req, fmt.Errorf("%w: missing action", ErrInvalidMessage)
	}
	return req, nil
}

// Router implements pagecall.Handler by dispatching envelopes to actions.
//
// All methods are safe for concurrent use.
type Router struct {
	mu      sync.RWMutex
	actions map[string]ActionFunc
	logger  *zap.Logger
}

var _ pagecall.Handler = (*Router)(nil)

// NewRouter returns an empty router logging through l (logging.Logger()
// when nil).
func NewRouter(l *zap.Logger) *Router {
	return &Router{
		actions: make(map[string]ActionFunc),
		logger:  logging.Named(l, "command"),
	}
}

// Handle registers fn for action, replacing any previous registration.
func (r *Router) Handle(action string, fn ActionFunc) {
	r.mu.Lock()
	r.actions[action] = fn
	r.mu.Unlock()
}

// Actions returns the registered action names in sorted order.
func (r *Router) Actions() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (r *Router) lookup(action string) ActionFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actions[action]
}

// HandleMessage decodes payload and runs its action. Failures of calls are
// answered through m; failures the caller cannot be told about directly are
// returned so the bridge reports them as an error event.
func (r *Router) HandleMessage(ctx context.Context, payload string, m pagecall.Messenger) error {
	req, err := Decode(payload)
	if err != nil {
		rerr := pagecall.WrapResponseError(pagecall.CodeInvalidMessage, err)
		if req.IsCall() {
			return m.Respond(req.ID, nil, rerr)
		}
		return rerr
	}

	log := r.logger.With(zap.String("action", req.Action))
	fn := r.lookup(req.Action)
	if fn == nil {
		log.Debug("unknown action")
		rerr := pagecall.WrapResponseError(pagecall.CodeUnknownAction, fmt.Errorf("%w: %s", ErrUnknownAction, req.Action))
		if req.IsCall() {
			return m.Respond(req.ID, nil, rerr)
		}
		return rerr
	}

	result, err := r.run(ctx, fn, req)
	if !req.IsCall() {
		return err
	}
	if err != nil {
		log.Debug("action failed", zap.Error(err))
	}
	return m.Respond(req.ID, result, err)
}

func (r *Router) run(ctx context.Context, fn ActionFunc, req Request) (result any, err error) {
	defer perrors.RecoverWithCallback("command.Router."+req.Action, func(v any) {
		result, err = nil, pagecall.NewResponseError(pagecall.CodePanic, fmt.Sprint(v))
	})
	return fn(ctx, req.Payload)
}
