// Package user holds login credentials and ACL-group memberships, loaded
// from an external credential source that can be re-read at any time.
package user

import (
	"go.uber.org/zap"

	"github.com/orangerpc/orange/registry"
)

// User is a single account. PasswordHash is the opaque credential digest
// the challenge-response login verifies against; it stays empty until the
// credential source provides one, and a user without a hash can never log
// in. Groups is the ordered list of ACL group names the account belongs to.
type User struct {
	Username     string
	PasswordHash string
	Groups       []string
}

// AddGroup appends a group membership, skipping duplicates.
func (u *User) AddGroup(group string) {
	for _, g := range u.Groups {
		if g == group {
			return
		}
	}
	u.Groups = append(u.Groups, group)
}

// Store keeps all known users. Users are created at startup or on first
// sight in the credential source and live until process teardown.
type Store struct {
	users  *registry.Registry[*User]
	logger *zap.Logger
}

// NewStore creates an empty user store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		users:  registry.New[*User](),
		logger: logger,
	}
}

// LoadCredentials reads every (username, hash) pair from the source.
// Known users get their hash updated in place; unknown usernames become new
// users with no group memberships. The operation is idempotent and is
// re-run before every login attempt so externally rotated credentials take
// effect without a restart. A source read failure is logged and absorbed;
// the store keeps whatever it already knew.
func (s *Store) LoadCredentials(source CredentialSource) int {
	creds, err := source.Credentials()
	if err != nil {
		s.logger.Warn("failed to read credential source", zap.Error(err))
		return 0
	}

	loaded := 0
	for _, cred := range creds {
		if existing, err := s.users.Find(cred.Username); err == nil {
			existing.PasswordHash = cred.PasswordHash
			s.logger.Debug("updated credentials for existing user",
				zap.String("username", cred.Username))
		} else {
			u := &User{Username: cred.Username, PasswordHash: cred.PasswordHash}
			if err := s.users.Insert(cred.Username, u); err != nil {
				s.logger.Warn("could not insert user",
					zap.String("username", cred.Username), zap.Error(err))
				continue
			}
			s.logger.Debug("loaded new user", zap.String("username", cred.Username))
		}
		loaded++
	}
	return loaded
}

// Find returns the user for username or registry.ErrNotFound.
func (s *Store) Find(username string) (*User, error) {
	return s.users.Find(username)
}

// Add inserts a pre-built user, used for accounts declared in
// configuration before any credentials are loaded.
func (s *Store) Add(u *User) error {
	return s.users.Insert(u.Username, u)
}

// Len returns the number of known users.
func (s *Store) Len() int {
	return s.users.Len()
}
