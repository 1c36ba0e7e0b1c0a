// Package vault keeps the portal credentials sealed at rest. The AES key is
// derived from a user passphrase with argon2id; only the salt and a
// verifier of the derived key are stored in clear.
package vault

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/agendasync/internal/common"
	"github.com/dmitrijs2005/agendasync/internal/cryptox"
	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/repositories/metadata"
)

const saltSize = 32

var ErrLocked = errors.New("vault is locked")

// Vault is an unlocked credential store. The zero value is unusable; use
// Unlock.
type Vault struct {
	repo metadata.Repository

	mu  sync.RWMutex
	key []byte
}

// Unlock derives the master key from passphrase. On first use it creates
// and stores a fresh salt and verifier; afterwards a passphrase whose key
// does not match the verifier yields common.ErrWrongPassphrase.
func Unlock(ctx context.Context, repo metadata.Repository, passphrase []byte) (*Vault, error) {
	salt, err := repo.Get(ctx, metadata.KeySalt)
	if err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	verifier, err := repo.Get(ctx, metadata.KeyVerifier)
	if err != nil {
		return nil, fmt.Errorf("read verifier: %w", err)
	}

	if len(salt) == 0 || len(verifier) == 0 {
		salt = common.GenerateRandByteArray(saltSize)
		key := cryptox.DeriveMasterKey(passphrase, salt)
		if err := repo.Set(ctx, metadata.KeySalt, salt); err != nil {
			return nil, fmt.Errorf("save salt: %w", err)
		}
		if err := repo.Set(ctx, metadata.KeyVerifier, cryptox.MakeVerifier(key)); err != nil {
			return nil, fmt.Errorf("save verifier: %w", err)
		}
		return &Vault{repo: repo, key: key}, nil
	}

	key := cryptox.DeriveMasterKey(passphrase, salt)
	if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(key)) == 0 {
		common.WipeByteArray(key)
		return nil, common.ErrWrongPassphrase
	}
	return &Vault{repo: repo, key: key}, nil
}

// Store seals creds and replaces whatever was stored.
func (v *Vault) Store(ctx context.Context, creds models.Credentials) error {
	key, err := v.masterKey()
	if err != nil {
		return err
	}
	blob, err := cryptox.SealJSON(creds, key)
	if err != nil {
		return fmt.Errorf("seal credentials: %w", err)
	}
	if err := v.repo.Set(ctx, metadata.KeyCredentials, blob); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	return nil
}

// Load returns the stored credentials, or common.ErrNotFound when none are
// stored.
func (v *Vault) Load(ctx context.Context) (*models.Credentials, error) {
	key, err := v.masterKey()
	if err != nil {
		return nil, err
	}
	blob, err := v.repo.Get(ctx, metadata.KeyCredentials)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if len(blob) == 0 {
		return nil, common.ErrNotFound
	}

	var creds models.Credentials
	if err := cryptox.OpenJSON(blob, key, &creds); err != nil {
		return nil, fmt.Errorf("open credentials: %w", err)
	}
	return &creds, nil
}

// Clear removes the stored credentials. The salt and verifier stay, so the
// same passphrase keeps working.
func (v *Vault) Clear(ctx context.Context) error {
	if err := v.repo.Delete(ctx, metadata.KeyCredentials); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// SubKey derives a purpose-bound key from the master key.
func (v *Vault) SubKey(label string) ([]byte, error) {
	key, err := v.masterKey()
	if err != nil {
		return nil, err
	}
	return cryptox.SubKey(key, label), nil
}

// WithRepository moves the unlocked vault onto repo, e.g. from the
// transaction it was unlocked in back to the connection pool.
func (v *Vault) WithRepository(repo metadata.Repository) *Vault {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.repo = repo
	return v
}

// Lock wipes the master key from memory.
func (v *Vault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()
	common.WipeByteArray(v.key)
	v.key = nil
}

func (v *Vault) masterKey() ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.key == nil {
		return nil, ErrLocked
	}
	return v.key, nil
}
