package registry

import (
	"errors"
	"testing"
)

func TestInsertDuplicate(t *testing.T) {
	r := New[int]()

	if err := r.Insert("a", 1); err != nil {
		t.Fatalf("unexpected error on first insert: %v", err)
	}
	if err := r.Insert("a", 2); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// The original entry must be untouched.
	v, err := r.Find("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1 {
		t.Errorf("expected original value 1, got %d", v)
	}
}

func TestFindRemove(t *testing.T) {
	r := New[string]()

	if _, err := r.Find("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := r.Remove("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := r.Insert("k", "v"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Remove("k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Find("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", r.Len())
	}
}

func TestForEachSorted(t *testing.T) {
	r := New[int]()
	for i, key := range []string{"zeta", "alpha", "mid"} {
		if err := r.Insert(key, i); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var keys []string
	r.ForEach(func(key string, _ int) bool {
		keys = append(keys, key)
		return true
	})

	expected := []string{"alpha", "mid", "zeta"}
	if len(keys) != len(expected) {
		t.Fatalf("expected %d keys, got %d", len(expected), len(keys))
	}
	for i := range expected {
		if keys[i] != expected[i] {
			t.Errorf("position %d: expected %q, got %q", i, expected[i], keys[i])
		}
	}
}

func TestForEachEarlyStop(t *testing.T) {
	r := New[int]()
	for _, key := range []string{"a", "b", "c"} {
		if err := r.Insert(key, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	visited := 0
	r.ForEach(func(string, int) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Errorf("expected iteration to stop after 2 entries, visited %d", visited)
	}
}
