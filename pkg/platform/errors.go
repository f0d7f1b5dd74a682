package platform

import "errors"

// Standard errors for platform operations.
var (
	// ErrChannelNotFound indicates the requested platform channel does not exist.
	ErrChannelNotFound = errors.New("platform: channel not found")

	// ErrMethodNotFound indicates the method is not implemented by the receiver.
	ErrMethodNotFound = errors.New("platform: method not implemented")

	// ErrInvalidArguments indicates the arguments passed to a method were invalid.
	ErrInvalidArguments = errors.New("platform: invalid arguments")

	// ErrPlatformUnavailable indicates no native bridge is installed.
	ErrPlatformUnavailable = errors.New("platform: native bridge unavailable")

	// ErrViewTypeNotFound indicates the platform view type is not registered.
	ErrViewTypeNotFound = errors.New("platform: view type not registered")

	// ErrDisposed is returned when operating on a disposed view.
	ErrDisposed = errors.New("platform: view disposed")

	// ErrChannelNotRegistered is returned when an event arrives for an unknown channel.
	ErrChannelNotRegistered = errors.New("platform: event channel not registered")
)

// ChannelError represents an error returned from native code.
type ChannelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *ChannelError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// NewChannelError creates a new ChannelError with the given code and message.
func NewChannelError(code, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}
