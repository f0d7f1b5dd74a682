package pagecall

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDisconnected is returned by bridge operations after Disconnect.
	ErrDisconnected = errors.New("pagecall: bridge disconnected")

	// ErrBootstrapUnavailable indicates the bootstrap script could not be loaded.
	ErrBootstrapUnavailable = errors.New("pagecall: bootstrap script unavailable")

	// ErrNoWebView is reported when a surface is constructed without a web view.
	ErrNoWebView = errors.New("pagecall: no web view")
)

// Response error codes delivered to web content.
const (
	CodeInvalidMessage = "invalid_message"
	CodeUnknownAction  = "unknown_action"
	CodeHandlerFailed  = "handler_failed"
	CodePanic          = "panic"
	CodeTimeout        = "timeout"
)

// ResponseError is the error shape web content receives in responses and
// "error" events.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`

	cause error
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// Unwrap returns the error passed to WrapResponseError, if any.
func (e *ResponseError) Unwrap() error {
	return e.cause
}

// NewResponseError creates a ResponseError with the given code and message.
func NewResponseError(code, message string) *ResponseError {
	return &ResponseError{Code: code, Message: message}
}

// WrapResponseError creates a ResponseError carrying err's message that
// unwraps to err.
func WrapResponseError(code string, err error) *ResponseError {
	return &ResponseError{Code: code, Message: err.Error(), cause: err}
}

// AsResponseError converts err into the shape delivered to web content.
// A wrapped *ResponseError is returned as is; deadline errors map to
// CodeTimeout and anything else to CodeHandlerFailed.
func AsResponseError(err error) *ResponseError {
	if err == nil {
		return nil
	}
	var re *ResponseError
	if errors.As(err, &re) {
		return re
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewResponseError(CodeTimeout, err.Error())
	}
	return NewResponseError(CodeHandlerFailed, err.Error())
}

func panicError(r any) *ResponseError {
	return NewResponseError(CodePanic, fmt.Sprint(r))
}
