package command

import (
	"context"

	"github.com/tidwall/gjson"
)

// RegisterBuiltins registers the actions every host provides:
//
//	ping  answers "pong"
//	echo  answers with its payload
func RegisterBuiltins(r *Router) {
	r.Handle("ping", func(context.Context, gjson.Result) (any, error) {
		return "pong", nil
	})
	r.Handle("echo", func(_ context.Context, payload gjson.Result) (any, error) {
		return payload.Value(), nil
	})
}
