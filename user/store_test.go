package user

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/orangerpc/orange/registry"
)

func TestLoadCredentialsIdempotent(t *testing.T) {
	store := NewStore(zap.NewNop())
	source := StaticSource{
		{Username: "bob", PasswordHash: "5f4dcc3b5aa765d61d8327deb882cf99"},
	}

	if n := store.LoadCredentials(source); n != 1 {
		t.Fatalf("expected 1 credential loaded, got %d", n)
	}
	if n := store.LoadCredentials(source); n != 1 {
		t.Fatalf("expected 1 credential loaded on re-run, got %d", n)
	}

	if store.Len() != 1 {
		t.Errorf("expected exactly one user after double load, got %d", store.Len())
	}
	u, err := store.Find("bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.PasswordHash != "5f4dcc3b5aa765d61d8327deb882cf99" {
		t.Errorf("unexpected hash: %q", u.PasswordHash)
	}
}

func TestLoadCredentialsUpdatesHashInPlace(t *testing.T) {
	store := NewStore(zap.NewNop())

	u := &User{Username: "admin", Groups: []string{"admin"}}
	if err := store.Add(u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.LoadCredentials(StaticSource{{Username: "admin", PasswordHash: "aaaa"}})
	if u.PasswordHash != "aaaa" {
		t.Errorf("expected hash update in place, got %q", u.PasswordHash)
	}
	if len(u.Groups) != 1 || u.Groups[0] != "admin" {
		t.Errorf("group memberships must survive credential reload: %v", u.Groups)
	}

	// Rotation.
	store.LoadCredentials(StaticSource{{Username: "admin", PasswordHash: "bbbb"}})
	if u.PasswordHash != "bbbb" {
		t.Errorf("expected rotated hash, got %q", u.PasswordHash)
	}
}

func TestLoadCredentialsSourceFailure(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.LoadCredentials(StaticSource{{Username: "bob", PasswordHash: "h"}})

	// Unreadable source is absorbed; previous state survives.
	if n := store.LoadCredentials(FileSource{Path: "/nonexistent/shadow"}); n != 0 {
		t.Errorf("expected 0 loaded from unreadable source, got %d", n)
	}
	if _, err := store.Find("bob"); err != nil {
		t.Errorf("previously loaded user must survive a source failure: %v", err)
	}
}

func TestFindUnknown(t *testing.T) {
	store := NewStore(zap.NewNop())
	if _, err := store.Find("nobody"); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddGroupDeduplicates(t *testing.T) {
	u := &User{Username: "x"}
	u.AddGroup("admin")
	u.AddGroup("support")
	u.AddGroup("admin")
	if len(u.Groups) != 2 {
		t.Errorf("expected 2 groups, got %v", u.Groups)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shadow")
	content := "bob 5f4dcc3b5aa765d61d8327deb882cf99\n\nmalformed line with extras\nalice aabb\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	creds, err := FileSource{Path: path, Logger: zap.NewNop()}.Credentials()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(creds) != 2 {
		t.Fatalf("expected 2 credentials, malformed line skipped, got %d", len(creds))
	}
	if creds[0].Username != "bob" || creds[1].Username != "alice" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
}
