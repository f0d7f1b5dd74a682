package pagecall

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// clientAPI is the object the bootstrap script installs.
const clientAPI = "window.PagecallNative"

// ErrorEvent is the event name used to report dispatch failures to web
// content.
const ErrorEvent = "error"

// respondScript builds the script delivering a response for request id.
func respondScript(id string, result any, err error) (string, error) {
	envelope, e := sjson.Set(`{}`, "id", id)
	if e != nil {
		return "", fmt.Errorf("encode response id: %w", e)
	}
	if err != nil {
		envelope, e = sjson.Set(envelope, "error", AsResponseError(err))
	} else {
		envelope, e = sjson.Set(envelope, "result", result)
	}
	if e != nil {
		return "", fmt.Errorf("encode response: %w", e)
	}
	return callClient("__respond", envelope), nil
}

// emitScript builds the script delivering event with data.
func emitScript(event string, data any) (string, error) {
	envelope, err := sjson.Set(`{}`, "event", event)
	if err != nil {
		return "", fmt.Errorf("encode event name: %w", err)
	}
	envelope, err = sjson.Set(envelope, "data", data)
	if err != nil {
		return "", fmt.Errorf("encode event data: %w", err)
	}
	return callClient("__emit", envelope), nil
}

// callClient guards against pages where the bootstrap script did not run.
func callClient(fn, envelope string) string {
	return clientAPI + "&&" + clientAPI + "." + fn + "(" + envelope + ");"
}
