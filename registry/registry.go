// Package registry provides a generic keyed store with unique string keys
// and deterministic, key-sorted iteration. It backs the user, session and
// object tables of the RPC engine.
package registry

import (
	"errors"
	"sort"
)

// Common registry errors
var (
	ErrDuplicateKey = errors.New("key already exists")
	ErrNotFound     = errors.New("key not found")
)

// Registry maps unique string keys to entries of type T. It is not
// goroutine-safe on its own; callers serialize access (the RPC engine holds
// one lock around all registry mutations).
type Registry[T any] struct {
	entries map[string]T
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]T),
	}
}

// Insert adds an entry under key. It fails with ErrDuplicateKey if the key
// is already present, leaving the existing entry untouched.
func (r *Registry[T]) Insert(key string, value T) error {
	if _, exists := r.entries[key]; exists {
		return ErrDuplicateKey
	}
	r.entries[key] = value
	return nil
}

// Find returns the entry stored under key.
func (r *Registry[T]) Find(key string) (T, error) {
	value, exists := r.entries[key]
	if !exists {
		var zero T
		return zero, ErrNotFound
	}
	return value, nil
}

// Remove deletes the entry stored under key.
func (r *Registry[T]) Remove(key string) error {
	if _, exists := r.entries[key]; !exists {
		return ErrNotFound
	}
	delete(r.entries, key)
	return nil
}

// Len returns the number of entries.
func (r *Registry[T]) Len() int {
	return len(r.entries)
}

// ForEach visits every entry in key-sorted order. Returning false from fn
// stops the iteration early.
func (r *Registry[T]) ForEach(fn func(key string, value T) bool) {
	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !fn(key, r.entries[key]) {
			return
		}
	}
}
