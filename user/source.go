package user

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Credential is one (username, password hash) pair from the source.
type Credential struct {
	Username     string
	PasswordHash string
}

// CredentialSource yields the current set of credentials. It is re-read
// before every login attempt, so implementations should be cheap.
type CredentialSource interface {
	Credentials() ([]Credential, error)
}

// FileSource reads a line-oriented password file, one whitespace-separated
// "username hash" pair per line. Blank lines are skipped; a line that does
// not split into exactly two fields is logged with its line number and
// skipped, and parsing continues.
type FileSource struct {
	Path   string
	Logger *zap.Logger
}

// Credentials reads and parses the password file.
func (f FileSource) Credentials() ([]Credential, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("could not read password file %s: %w", f.Path, err)
	}

	var creds []Credential
	for i, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			if f.Logger != nil {
				f.Logger.Warn("malformed credential line",
					zap.String("file", f.Path),
					zap.Int("line", i+1),
					zap.Int("fields", len(fields)))
			}
			continue
		}
		creds = append(creds, Credential{Username: fields[0], PasswordHash: fields[1]})
	}
	return creds, nil
}

// StaticSource serves a fixed credential list, used in tests and for
// configuration-declared accounts.
type StaticSource []Credential

// Credentials returns the fixed list.
func (s StaticSource) Credentials() ([]Credential, error) {
	return []Credential(s), nil
}
