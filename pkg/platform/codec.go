// Package platform wraps the host's web-rendering control and the channels
// used to talk to native code.
//
// Go never renders web content. A [WebView] is the narrow set of operations
// the pagecall surface needs from the host control: apply configuration,
// inject user scripts, register script message handlers and evaluate
// script. [NativeWebView] implements it over platform channels for a real
// host, [HeadlessWebView] implements it in memory for tests and tooling.
package platform

import "encoding/json"

// MessageCodec encodes and decodes messages for platform channel communication.
type MessageCodec interface {
	// Encode converts a Go value to bytes for transmission to native code.
	Encode(value any) ([]byte, error)

	// Decode converts bytes received from native code to a Go value.
	Decode(data []byte) (any, error)
}

// JSONCodec implements MessageCodec using JSON encoding.
type JSONCodec struct{}

// Encode serializes the value to JSON bytes.
func (JSONCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Decode deserializes JSON bytes to a Go value. Empty input decodes to nil.
func (JSONCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DefaultCodec is the codec used by platform channels.
var DefaultCodec MessageCodec = JSONCodec{}
