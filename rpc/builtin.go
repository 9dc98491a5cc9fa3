package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/orangerpc/orange/object"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// NewInfoObject builds the builtin "orange" object exposing basic server
// state to authorized clients, mirroring the core API plugins get from the
// host. It is registered like any plugin object and subject to the same
// ACL checks.
func NewInfoObject(e *Engine) object.Object {
	started := time.Now()

	o := object.NewFuncObject("orange")
	o.Register("info", nil, func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
		return json.Marshal(map[string]any{
			"version":  Version,
			"uptime":   int64(time.Since(started).Seconds()),
			"sessions": e.SessionCount(),
		})
	})
	return o
}
