package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced across the request pipeline. Callers dispatch with
// errors.Is; wrapping preserves the kind while adding context.
var (
	// ErrCsrfSuspected marks a request whose Origin/Referer did not match
	// the trusted origin. Forensic detail is logged, never returned.
	ErrCsrfSuspected = errors.New("csrf suspected")

	// ErrAuthentication marks a cryptographically invalid bearer token or a
	// request that requires an identity none was established for.
	ErrAuthentication = errors.New("authentication failed")

	// ErrSessionExpired marks a structurally valid but expired token,
	// distinct from ErrAuthentication so clients re-authenticate instead of
	// retrying identically.
	ErrSessionExpired = errors.New("session expired")

	// ErrEndpointUnreachable marks a transport-level failure talking to the
	// identity provider, distinct from a rejected exchange.
	ErrEndpointUnreachable = errors.New("identity provider endpoint unreachable")

	// ErrClientAuthentication marks a failed client-side exchange check,
	// including a nonce the provider did not echo back correctly.
	ErrClientAuthentication = errors.New("client authentication failed")

	// ErrNonceMismatch narrows ErrClientAuthentication to the case where the
	// provider answered with a nonce other than the one sent.
	ErrNonceMismatch = fmt.Errorf("response nonce mismatch: %w", ErrClientAuthentication)

	// ErrNotFound marks a missing resource.
	ErrNotFound = errors.New("not found")

	// ErrPersistence marks a storage failure. Details are logged server-side
	// and never echoed to clients.
	ErrPersistence = errors.New("persistence failure")

	// ErrVersionMismatch is returned by the conditional checklist write when
	// the stored version no longer matches the expected one.
	ErrVersionMismatch = errors.New("version mismatch")
)
