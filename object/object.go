// Package object defines the callable-object surface the RPC engine
// dispatches to. Objects are produced by an external load phase (a plugin
// engine, out of scope here); the engine only needs their name, a method
// signature descriptor for introspection, and an invoke operation.
package object

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrMethodNotFound is returned by Invoke when an object has no such
// method.
var ErrMethodNotFound = errors.New("method not found")

// Signature describes an object's methods and their expected argument
// shapes, keyed by method name. The argument descriptor is opaque to the
// core; it is served verbatim by the list operation.
type Signature map[string]json.RawMessage

// Object is a registered callable. Invoke errors are propagated to the
// caller verbatim; the dispatch layer never retries or reinterprets them.
type Object interface {
	Name() string
	Signature() Signature
	Invoke(ctx context.Context, method string, args json.RawMessage) (json.RawMessage, error)
}
