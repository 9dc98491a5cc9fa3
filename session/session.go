// Package session manages authenticated sessions. A session binds exactly
// one user to an unguessable token and carries the ACL rule set resolved
// for that user's groups at login time.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/orangerpc/orange/acl"
	"github.com/orangerpc/orange/registry"
	"github.com/orangerpc/orange/user"
)

const tokenBytes = 16

// Session is a live authenticated session. Rules is resolved once at login
// and never mutated afterwards. Sessions exist only for the lifetime of
// the process.
type Session struct {
	Token string
	User  *user.User
	Rules []acl.Rule
}

// Access reports whether the session may perform perm on
// (scope, object, method).
func (s *Session) Access(scope, object, method string, perm byte) bool {
	return acl.Check(s.Rules, scope, object, method, perm)
}

// Manager creates, looks up and destroys sessions.
type Manager struct {
	sessions *registry.Registry[*Session]
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: registry.New[*Session](),
	}
}

// Create builds a session with a fresh random token. The session is NOT
// inserted into the registry; the login path inserts it so that a token
// collision surfaces as a retryable login failure rather than a crash.
func (m *Manager) Create(u *user.User, rules []acl.Rule) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("could not generate session token: %w", err)
	}
	return &Session{Token: token, User: u, Rules: rules}, nil
}

// Insert adds a created session to the registry. Fails with
// registry.ErrDuplicateKey on token collision.
func (m *Manager) Insert(s *Session) error {
	return m.sessions.Insert(s.Token, s)
}

// Find returns the session for token. An empty token always yields
// registry.ErrNotFound; there is no anonymous session.
func (m *Manager) Find(token string) (*Session, error) {
	if token == "" {
		return nil, registry.ErrNotFound
	}
	return m.sessions.Find(token)
}

// Destroy removes the session for token. Subsequent lookups with that
// token fail.
func (m *Manager) Destroy(token string) error {
	if token == "" {
		return registry.ErrNotFound
	}
	return m.sessions.Remove(token)
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
