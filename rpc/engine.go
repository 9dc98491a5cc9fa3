// Package rpc implements the authorization and dispatch core: the
// challenge-response login protocol, session lifecycle, and the routing of
// authenticated calls to registered callable objects with ACL enforcement.
package rpc

import (
	"context"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orangerpc/orange/acl"
	"github.com/orangerpc/orange/metrics"
	"github.com/orangerpc/orange/object"
	"github.com/orangerpc/orange/registry"
	"github.com/orangerpc/orange/session"
	"github.com/orangerpc/orange/user"
)

// Scope names accepted on access checks. ScopeLegacy is the deprecated
// alias still present in older rule files; both are tried on every call.
const (
	ScopeRPC    = "rpc"
	ScopeLegacy = "ubus"
)

// ObjectInfo is one entry of the list introspection result.
type ObjectInfo struct {
	Name      string           `json:"name"`
	Signature object.Signature `json:"signature"`
}

// Engine owns the three registries (users, sessions, objects) and
// serializes all mutations behind a single lock. Lookups and access checks
// take the read side; login, logout, registration and the credential
// reload take the write side.
type Engine struct {
	mu sync.RWMutex

	users       *user.Store
	credentials user.CredentialSource
	acls        *acl.Engine
	sessions    *session.Manager
	objects     *registry.Registry[object.Object]

	logger *zap.Logger
}

// NewEngine constructs the engine around its collaborator sources. The
// credential source is re-read before every login attempt; the ACL source
// behind acls is read at login time only.
func NewEngine(users *user.Store, credentials user.CredentialSource, acls *acl.Engine, logger *zap.Logger) *Engine {
	return &Engine{
		users:       users,
		credentials: credentials,
		acls:        acls,
		sessions:    session.NewManager(),
		objects:     registry.New[object.Object](),
		logger:      logger,
	}
}

// Register adds a callable object. Duplicate names are rejected: the
// existing entry wins, the new one is discarded and reported.
func (e *Engine) Register(obj object.Object) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.objects.Insert(obj.Name(), obj); err != nil {
		e.logger.Warn("could not register object",
			zap.String("object", obj.Name()), zap.Error(err))
		return fmt.Errorf("register %s: %w", obj.Name(), err)
	}
	e.logger.Info("registered object", zap.String("object", obj.Name()))
	return nil
}

// Login runs the challenge-response handshake. The client picked the
// challenge and proves knowledge of the stored password hash by sending
// response == hex(sha1(challenge + hash)). On success the user's ACL rules
// are resolved, a session is minted and inserted, and its token returned.
// Credentials are reloaded from the source first so out-of-band password
// rotation takes effect without a restart.
func (e *Engine) Login(username, challenge, response string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.users.LoadCredentials(e.credentials)

	u, err := e.users.Find(username)
	if err != nil {
		// Logged internally, but externally indistinguishable from a
		// wrong password to avoid user enumeration.
		e.logger.Debug("login attempt for unknown user", zap.String("username", username))
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", ErrInvalidCredentials
	}

	if !verifyResponse(u.PasswordHash, challenge, response) {
		e.logger.Debug("login failed", zap.String("username", username))
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", ErrInvalidCredentials
	}

	rules := e.acls.Resolve(u.Groups)

	ses, err := e.sessions.Create(u, rules)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("login %s: %w", username, err)
	}
	if err := e.sessions.Insert(ses); err != nil {
		// Token collision; the caller may simply retry the login.
		e.logger.Warn("could not insert session", zap.Error(err))
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("login %s: %w", username, err)
	}

	e.logger.Info("user logged in",
		zap.String("username", username),
		zap.Int("rules", len(rules)))
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.ActiveSessions.Set(float64(e.sessions.Len()))
	return ses.Token, nil
}

// Logout destroys the session immediately; there is no grace period.
func (e *Engine) Logout(token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sessions.Destroy(token); err != nil {
		return err
	}
	e.logger.Info("session destroyed")
	metrics.ActiveSessions.Set(float64(e.sessions.Len()))
	return nil
}

// Call routes an authenticated call to the target object's method. The
// order of checks is fixed: unknown object first (NotFound), then missing
// session (Unauthorized), then the ACL check for execute permission under
// the rpc scope or its legacy alias (Forbidden). The object's own
// invocation errors pass through verbatim.
func (e *Engine) Call(ctx context.Context, token, objectName, method string, args json.RawMessage) (json.RawMessage, error) {
	start := time.Now()

	obj, err := e.authorize(token, objectName, method)
	if err != nil {
		return nil, err
	}

	// The registry lock is released before invoking: a long-running
	// method body must not block logins, and objects may call back
	// into the engine (the builtin info object does).
	result, err := obj.Invoke(ctx, method, args)
	metrics.RPCCallDuration.WithLabelValues(objectName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RPCCallsTotal.WithLabelValues(objectName, "error").Inc()
		return nil, err
	}
	metrics.RPCCallsTotal.WithLabelValues(objectName, "ok").Inc()
	return result, nil
}

// authorize resolves the object and session and runs the access check,
// holding the read lock only for the registry lookups.
func (e *Engine) authorize(token, objectName, method string) (object.Object, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	obj, err := e.objects.Find(objectName)
	if err != nil {
		e.logger.Warn("object not found", zap.String("object", objectName))
		metrics.RPCCallsTotal.WithLabelValues(objectName, "not_found").Inc()
		return nil, fmt.Errorf("call %s: %w", objectName, registry.ErrNotFound)
	}

	ses, err := e.sessions.Find(token)
	if err != nil {
		e.logger.Debug("could not find session for request")
		metrics.RPCCallsTotal.WithLabelValues(objectName, "unauthorized").Inc()
		return nil, ErrUnauthorized
	}

	if !ses.Access(ScopeRPC, objectName, method, acl.PermExecute) &&
		!ses.Access(ScopeLegacy, objectName, method, acl.PermExecute) {
		e.logger.Warn("call denied",
			zap.String("username", ses.User.Username),
			zap.String("object", objectName),
			zap.String("method", method))
		metrics.RPCCallsTotal.WithLabelValues(objectName, "forbidden").Inc()
		metrics.ACLDenialsTotal.WithLabelValues(objectName).Inc()
		return nil, ErrForbidden
	}

	return obj, nil
}

// List enumerates registered objects and their method signatures in key
// order. It is intentionally not access-checked: clients may discover the
// available surface before authenticating.
func (e *Engine) List(token string) []ObjectInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	infos := make([]ObjectInfo, 0, e.objects.Len())
	e.objects.ForEach(func(name string, obj object.Object) bool {
		infos = append(infos, ObjectInfo{Name: name, Signature: obj.Signature()})
		return true
	})
	return infos
}

// SessionExists reports whether token resolves to an active session.
func (e *Engine) SessionExists(token string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.sessions.Find(token)
	return err == nil
}

// SessionCount returns the number of active sessions.
func (e *Engine) SessionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sessions.Len()
}

// IsNotFound reports whether err is the unknown-object (or unknown-key)
// error kind.
func IsNotFound(err error) bool {
	return errors.Is(err, registry.ErrNotFound)
}

// verifyResponse recomputes hex(sha1(challenge + hash)) and compares it to
// the client's response in constant time. A user with no stored hash can
// never authenticate.
func verifyResponse(hash, challenge, response string) bool {
	if hash == "" {
		return false
	}
	digest := sha1.Sum([]byte(challenge + hash))
	expected := hex.EncodeToString(digest[:])
	if len(response) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(response)) == 1
}
