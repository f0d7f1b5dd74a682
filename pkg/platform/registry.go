package platform

import (
	"fmt"
	"sync"

	"github.com/pagecall/pagecall-drift/pkg/errors"
)

// channelRegistry holds every registered platform channel by name.
type channelRegistry struct {
	mu             sync.RWMutex
	methodChannels map[string]*MethodChannel
	eventChannels  map[string]*EventChannel
}

var registry = &channelRegistry{
	methodChannels: make(map[string]*MethodChannel),
	eventChannels:  make(map[string]*EventChannel),
}

func (r *channelRegistry) registerMethod(name string, ch *MethodChannel) {
	r.mu.Lock()
	r.methodChannels[name] = ch
	r.mu.Unlock()
}

func (r *channelRegistry) registerEvent(name string, ch *EventChannel) {
	r.mu.Lock()
	r.eventChannels[name] = ch
	r.mu.Unlock()
}

func (r *channelRegistry) methodChannel(name string) *MethodChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.methodChannels[name]
}

func (r *channelRegistry) eventChannel(name string) *EventChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.eventChannels[name]
}

// NativeBridge is implemented by the host to carry channel traffic to
// native code.
type NativeBridge interface {
	// InvokeMethod calls a method on the native side.
	InvokeMethod(channel, method string, args []byte) ([]byte, error)

	// StartEventStream tells native to start sending events for a channel.
	StartEventStream(channel string) error

	// StopEventStream tells native to stop sending events for a channel.
	StopEventStream(channel string) error
}

var (
	bridgeMu     sync.RWMutex
	nativeBridge NativeBridge
)

// SetNativeBridge installs the native bridge and starts event streams for
// channels that were subscribed before a bridge was available. Passing nil
// detaches the bridge and marks every stream stopped.
func SetNativeBridge(bridge NativeBridge) {
	bridgeMu.Lock()
	nativeBridge = bridge
	bridgeMu.Unlock()

	registry.mu.RLock()
	channels := make([]*EventChannel, 0, len(registry.eventChannels))
	for _, ch := range registry.eventChannels {
		channels = append(channels, ch)
	}
	registry.mu.RUnlock()

	if bridge == nil {
		for _, ch := range channels {
			ch.mu.Lock()
			ch.started = false
			ch.mu.Unlock()
		}
		return
	}

	for _, ch := range channels {
		ch.mu.Lock()
		start := len(ch.subs) > 0 && !ch.started
		if start {
			ch.started = true
		}
		ch.mu.Unlock()
		if !start {
			continue
		}
		if err := startEventStream(ch.name); err != nil {
			ch.mu.Lock()
			ch.started = false
			ch.mu.Unlock()
			ch.dispatchError(err)
		}
	}
}

func currentBridge() NativeBridge {
	bridgeMu.RLock()
	defer bridgeMu.RUnlock()
	return nativeBridge
}

func invokeNative(channel, method string, args any) (any, error) {
	b := currentBridge()
	if b == nil {
		return nil, ErrPlatformUnavailable
	}
	argsData, err := DefaultCodec.Encode(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s.%s args: %w", channel, method, err)
	}
	resultData, err := b.InvokeMethod(channel, method, argsData)
	if err != nil {
		return nil, err
	}
	return DefaultCodec.Decode(resultData)
}

func startEventStream(channel string) error {
	b := currentBridge()
	if b == nil {
		return ErrPlatformUnavailable
	}
	if err := b.StartEventStream(channel); err != nil {
		errors.Report(&errors.BridgeError{
			Op:      "platform.startEventStream",
			Kind:    errors.KindPlatform,
			Channel: channel,
			Err:     err,
		})
		return err
	}
	return nil
}

func stopEventStream(channel string) {
	b := currentBridge()
	if b == nil {
		return
	}
	if err := b.StopEventStream(channel); err != nil {
		errors.Report(&errors.BridgeError{
			Op:      "platform.stopEventStream",
			Kind:    errors.KindPlatform,
			Channel: channel,
			Err:     err,
		})
	}
}

// HandleMethodCall is called by the host when native invokes a Go method.
func HandleMethodCall(channel, method string, argsData []byte) ([]byte, error) {
	ch := registry.methodChannel(channel)
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	args, err := DefaultCodec.Decode(argsData)
	if err != nil {
		return nil, err
	}
	result, err := ch.handleCall(method, args)
	if err != nil {
		return nil, err
	}
	return DefaultCodec.Encode(result)
}

// HandleEvent is called by the host when native sends an event.
func HandleEvent(channel string, eventData []byte) error {
	ch := registry.eventChannel(channel)
	if ch == nil {
		err := fmt.Errorf("%w: %s", ErrChannelNotRegistered, channel)
		errors.Report(&errors.BridgeError{
			Op:      "platform.HandleEvent",
			Kind:    errors.KindPlatform,
			Channel: channel,
			Err:     err,
		})
		return err
	}
	data, err := DefaultCodec.Decode(eventData)
	if err != nil {
		ch.dispatchError(err)
		return err
	}
	ch.dispatchEvent(data)
	return nil
}

// HandleEventError is called by the host when an event stream fails.
func HandleEventError(channel, code, message string) error {
	ch := registry.eventChannel(channel)
	if ch == nil {
		return fmt.Errorf("%w: %s", ErrChannelNotRegistered, channel)
	}
	ch.dispatchError(NewChannelError(code, message))
	return nil
}

// HandleEventDone is called by the host when an event stream ends.
func HandleEventDone(channel string) error {
	ch := registry.eventChannel(channel)
	if ch == nil {
		return fmt.Errorf("%w: %s", ErrChannelNotRegistered, channel)
	}
	ch.dispatchDone()
	return nil
}

// ResetForTest clears the native bridge, the dispatch function and all
// platform views so tests start from a clean slate. The platform view
// registry keeps its event subscription.
func ResetForTest() {
	SetNativeBridge(nil)
	RegisterDispatch(nil)

	r := GetPlatformViewRegistry()
	r.mu.Lock()
	r.views = make(map[int64]PlatformView)
	r.mu.Unlock()
	r.nextID.Store(0)
}
