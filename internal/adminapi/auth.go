package adminapi

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// TokenStore resolves an admin bearer token prefix to its bcrypt hash.
// A single-operator deployment can back this with a static in-memory
// store; a shared deployment can back it with Postgres, the same way
// permission.OverrideStore has both a file and a Postgres backend.
type TokenStore interface {
	LookupHash(ctx context.Context, prefix string) (hash string, found bool, err error)
}

// StaticTokenStore holds one operator token's bcrypt hash, generated
// once at boot from an operator-supplied secret. The prefix is the
// first 8 characters of the plaintext token, used only to key the
// LookupHash lookup; the full token is not stored by this store.
type StaticTokenStore struct {
	prefix string
	hash   string
}

// NewStaticTokenStore bcrypt-hashes plaintextToken and returns a store
// that authenticates exactly that token.
func NewStaticTokenStore(plaintextToken string) (*StaticTokenStore, error) {
	if len(plaintextToken) < 8 {
		return nil, fmt.Errorf("adminapi: admin token must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("adminapi: hashing admin token: %w", err)
	}
	return &StaticTokenStore{prefix: plaintextToken[:8], hash: string(hash)}, nil
}

func (s *StaticTokenStore) LookupHash(_ context.Context, prefix string) (string, bool, error) {
	if prefix != s.prefix {
		return "", false, nil
	}
	return s.hash, true, nil
}
