// Package metadata is a small key/value store for local state that does not
// deserve its own table: vault salt and verifier, sealed portal
// credentials and the persisted session token.
package metadata

import "context"

// Well-known keys.
const (
	KeySalt         = "vault_salt"
	KeyVerifier     = "vault_verifier"
	KeyCredentials  = "portal_credentials"
	KeySessionToken = "session_token"
)

// Repository stores opaque byte values by key. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
}
