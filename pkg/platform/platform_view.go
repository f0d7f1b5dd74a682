package platform

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pagecall/pagecall-drift/pkg/errors"
)

// Channel names used by the platform view registry.
const (
	platformViewsChannel = "pagecall/platform_views"
	platformViewsEvents  = "pagecall/platform_views/events"
)

// PlatformView represents a native view created through the registry.
type PlatformView interface {
	// ViewID returns the unique identifier for this view.
	ViewID() int64

	// ViewType returns the type identifier for this view.
	ViewType() string

	// Dispose releases Go-side resources. The registry notifies native.
	Dispose()
}

// viewEventReceiver is implemented by views that consume native events.
type viewEventReceiver interface {
	handleViewEvent(method string, args map[string]any)
}

// PlatformViewFactory creates platform views of a specific type.
type PlatformViewFactory interface {
	// Create creates a new platform view instance.
	Create(viewID int64, params map[string]any) (PlatformView, error)

	// ViewType returns the view type this factory creates.
	ViewType() string
}

// PlatformViewRegistry manages platform view types and instances.
type PlatformViewRegistry struct {
	mu        sync.RWMutex
	factories map[string]PlatformViewFactory
	views     map[int64]PlatformView
	nextID    atomic.Int64
	channel   *MethodChannel
	events    *EventChannel
}

var (
	viewRegistryOnce sync.Once
	viewRegistry     *PlatformViewRegistry
)

// GetPlatformViewRegistry returns the global platform view registry.
func GetPlatformViewRegistry() *PlatformViewRegistry {
	viewRegistryOnce.Do(func() {
		viewRegistry = newPlatformViewRegistry()
	})
	return viewRegistry
}

func newPlatformViewRegistry() *PlatformViewRegistry {
	r := &PlatformViewRegistry{
		factories: make(map[string]PlatformViewFactory),
		views:     make(map[int64]PlatformView),
		channel:   NewMethodChannel(platformViewsChannel),
		events:    NewEventChannel(platformViewsEvents),
	}
	r.events.Listen(EventHandler{OnEvent: r.handleEvent})
	return r
}

// RegisterFactory registers a factory for a platform view type.
func (r *PlatformViewRegistry) RegisterFactory(factory PlatformViewFactory) {
	r.mu.Lock()
	r.factories[factory.ViewType()] = factory
	r.mu.Unlock()
}

// Create creates a view of viewType and asks native to create its
// counterpart. The view is dropped again if native refuses.
func (r *PlatformViewRegistry) Create(viewType string, params map[string]any) (PlatformView, error) {
	r.mu.RLock()
	factory, ok := r.factories[viewType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewTypeNotFound, viewType)
	}

	viewID := r.nextID.Add(1)
	view, err := factory.Create(viewID, params)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.views[viewID] = view
	r.mu.Unlock()

	_, err = r.channel.Invoke("create", map[string]any{
		"viewId":   viewID,
		"viewType": viewType,
		"params":   params,
	})
	if err != nil {
		r.mu.Lock()
		delete(r.views, viewID)
		r.mu.Unlock()
		return nil, err
	}
	return view, nil
}

// Dispose destroys a platform view. Unknown IDs are ignored.
func (r *PlatformViewRegistry) Dispose(viewID int64) {
	r.mu.Lock()
	view, ok := r.views[viewID]
	delete(r.views, viewID)
	r.mu.Unlock()
	if !ok {
		return
	}

	view.Dispose()
	if _, err := r.channel.Invoke("dispose", map[string]any{"viewId": viewID}); err != nil {
		errors.Report(&errors.BridgeError{
			Op:      "platform.PlatformViewRegistry.Dispose",
			Kind:    errors.KindPlatform,
			Channel: platformViewsChannel,
			Err:     err,
		})
	}
}

// GetView returns a platform view by ID, or nil.
func (r *PlatformViewRegistry) GetView(viewID int64) PlatformView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.views[viewID]
}

// InvokeViewMethod invokes method on the native counterpart of viewID.
func (r *PlatformViewRegistry) InvokeViewMethod(viewID int64, method string, args map[string]any) (any, error) {
	invokeArgs := make(map[string]any, len(args)+2)
	for k, v := range args {
		invokeArgs[k] = v
	}
	invokeArgs["viewId"] = viewID
	invokeArgs["method"] = method
	return r.channel.Invoke("invokeViewMethod", invokeArgs)
}

// handleEvent routes a native view event to its view. Events carry
// "viewId" and "method" alongside method-specific fields.
func (r *PlatformViewRegistry) handleEvent(data any) {
	args, ok := data.(map[string]any)
	if !ok {
		r.reportParse(data)
		return
	}
	method, _ := args["method"].(string)
	id, ok := toInt64(args["viewId"])
	if !ok || method == "" {
		r.reportParse(data)
		return
	}
	view := r.GetView(id)
	if recv, ok := view.(viewEventReceiver); ok {
		recv.handleViewEvent(method, args)
	}
}

func (r *PlatformViewRegistry) reportParse(data any) {
	errors.Report(&errors.BridgeError{
		Op:      "platform.PlatformViewRegistry.handleEvent",
		Kind:    errors.KindParsing,
		Channel: platformViewsEvents,
		Err: &errors.ParseError{
			Channel:  platformViewsEvents,
			DataType: "PlatformViewEvent",
			Got:      data,
		},
	})
}

// toInt64 converts a JSON-decoded number to int64.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
