package rpc

import "errors"

// Errors surfaced to the transport layer. None of them are fatal to the
// process; every failure is returned to the caller or logged and absorbed.
var (
	// ErrInvalidCredentials covers both unknown users and wrong
	// challenge responses, so the external error never reveals whether
	// a username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means the request carried no resolvable session
	// token. Access is default-deny: an empty token is never an
	// anonymous session.
	ErrUnauthorized = errors.New("no valid session")

	// ErrForbidden means the session is authenticated but its resolved
	// rule set does not permit the call.
	ErrForbidden = errors.New("permission denied")
)
