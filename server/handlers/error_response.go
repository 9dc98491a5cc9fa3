package handlers

import (
	"errors"

	"github.com/orangerpc/orange/object"
	"github.com/orangerpc/orange/registry"
	"github.com/orangerpc/orange/rpc"
)

// JSON-RPC error codes. The -32600 range follows the JSON-RPC 2.0 spec;
// the -32000 range carries the backend's own error kinds.
const (
	CodeParse          = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32000

	CodeInvalidCredentials = -32001
	CodeUnauthorized       = -32002
	CodeForbidden          = -32003
	CodeNotFound           = -32004
	CodeRateLimited        = -32005
)

// Error is the JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var (
	errInvalidParams = errors.New("invalid params")
	errRateLimited   = errors.New("too many login attempts")
)

// toError maps an engine or handler error to its JSON-RPC error object.
// Object invocation errors fall through to CodeInternal with their own
// message, propagated verbatim.
func toError(err error) *Error {
	switch {
	case errors.Is(err, rpc.ErrInvalidCredentials):
		return &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	case errors.Is(err, rpc.ErrUnauthorized):
		return &Error{Code: CodeUnauthorized, Message: "no valid session"}
	case errors.Is(err, rpc.ErrForbidden):
		return &Error{Code: CodeForbidden, Message: "permission denied"}
	case errors.Is(err, registry.ErrNotFound):
		return &Error{Code: CodeNotFound, Message: "not found"}
	case errors.Is(err, object.ErrMethodNotFound):
		return &Error{Code: CodeMethodNotFound, Message: "no such method"}
	case errors.Is(err, errInvalidParams):
		return &Error{Code: CodeInvalidParams, Message: "invalid params"}
	case errors.Is(err, errRateLimited):
		return &Error{Code: CodeRateLimited, Message: "too many login attempts"}
	default:
		return &Error{Code: CodeInternal, Message: err.Error()}
	}
}
