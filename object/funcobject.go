package object

import (
	"context"
	"encoding/json"
)

// Method is a single callable method body.
type Method func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)

// FuncObject adapts a map of Go functions into an Object. It stands in for
// plugin-backed objects in tests and hosts the builtin objects registered
// by the server binary.
type FuncObject struct {
	name    string
	methods map[string]Method
	sig     Signature
}

// NewFuncObject creates an empty object with the given name.
func NewFuncObject(name string) *FuncObject {
	return &FuncObject{
		name:    name,
		methods: make(map[string]Method),
		sig:     make(Signature),
	}
}

// Register adds a method with its argument descriptor. Registering the
// same method twice replaces the previous body.
func (o *FuncObject) Register(method string, argSpec json.RawMessage, fn Method) *FuncObject {
	o.methods[method] = fn
	if argSpec == nil {
		argSpec = json.RawMessage(`{}`)
	}
	o.sig[method] = argSpec
	return o
}

// Name returns the object's registry key.
func (o *FuncObject) Name() string {
	return o.name
}

// Signature returns the method descriptor map.
func (o *FuncObject) Signature() Signature {
	return o.sig
}

// Invoke runs the named method.
func (o *FuncObject) Invoke(ctx context.Context, method string, args json.RawMessage) (json.RawMessage, error) {
	fn, ok := o.methods[method]
	if !ok {
		return nil, ErrMethodNotFound
	}
	return fn(ctx, args)
}
