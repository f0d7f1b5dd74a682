package errors

import (
	"go.uber.org/zap"

	"github.com/pagecall/pagecall-drift/pkg/logging"
)

// LogHandler is an ErrorHandler that writes errors through a zap logger.
type LogHandler struct {
	// Logger receives the entries. Nil means logging.Logger().
	Logger *zap.Logger
	// Verbose attaches stack traces to logged entries.
	Verbose bool
}

func (h *LogHandler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return logging.Logger()
}

// HandleError logs a BridgeError at error level.
func (h *LogHandler) HandleError(err *BridgeError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.String("kind", err.Kind.String()),
		zap.Error(err.Err),
	}
	if err.Channel != "" {
		fields = append(fields, zap.String("channel", err.Channel))
	}
	if err.BridgeID != "" {
		fields = append(fields, zap.String("bridge_id", err.BridgeID))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger().Error("pagecall error", fields...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{zap.Any("value", err.Value)}
	if err.Op != "" {
		fields = append(fields, zap.String("op", err.Op))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger().Error("pagecall panic", fields...)
}
