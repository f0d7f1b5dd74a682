// Package errors provides structured error handling for the pagecall bridge.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPlatform indicates a platform channel or host web view error.
	KindPlatform
	// KindParsing indicates a message or event parsing failure.
	KindParsing
	// KindInit indicates a construction or configuration error.
	KindInit
	// KindDispatch indicates a failure while dispatching a message to a handler.
	KindDispatch
	// KindScript indicates a script evaluation failure in the web content.
	KindScript
	// KindPanic indicates a failure caused by a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindParsing:
		return "parsing"
	case KindInit:
		return "init"
	case KindDispatch:
		return "dispatch"
	case KindScript:
		return "script"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// BridgeError represents a structured error raised by the surface, the bridge
// or the platform layer beneath them.
type BridgeError struct {
	// Op is the operation that failed (e.g., "pagecall.NewSurface").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Channel is the message channel name, if applicable.
	Channel string
	// BridgeID identifies the bridge involved, if any.
	BridgeID string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BridgeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", e.Op, e.Kind)
	if e.Channel != "" {
		b.WriteString(" channel=" + e.Channel)
	}
	if e.BridgeID != "" {
		b.WriteString(" bridge=" + e.BridgeID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "pagecall.Bridge.dispatch").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to parse a message or event.
type ParseError struct {
	// Channel is the channel that carried the data.
	Channel string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from channel %s: got %T", e.DataType, e.Channel, e.Got)
}

// ErrorHandler receives errors reported by the bridge and its host layer.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *BridgeError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
