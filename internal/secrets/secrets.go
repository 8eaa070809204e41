// Package secrets stores per-tenant X API credentials encrypted at rest.
// Each tenant gets one AES-GCM sealed file under its user directory; the
// key comes from the ENCRYPTION_KEY env (base64), or a generated key file.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/model"
)

var ErrNotFound = errors.New("no credentials found")

const credentialFile = "credentials.enc"
const keyFile = ".encryption_key"

// Store seals and opens credential bundles for tenants under dir.
type Store struct {
	dir string
	key []byte
}

// Open creates a Store rooted at dir. keyB64 may be empty, in which case the
// key is read from (or generated into) a key file next to dir. A non-base64
// key is treated as a passphrase and hashed.
func Open(dir, keyB64 string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("empty secrets dir")
	}
	key, err := resolveKey(dir, keyB64)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, key: key}, nil
}

func resolveKey(dir, keyB64 string) ([]byte, error) {
	if keyB64 != "" {
		if k, err := base64.URLEncoding.DecodeString(keyB64); err == nil && len(k) == 32 {
			return k, nil
		}
		// passphrase fallback
		sum := sha256.Sum256([]byte(keyB64))
		return sum[:], nil
	}
	path := filepath.Join(dir, keyFile)
	if b, err := os.ReadFile(path); err == nil {
		if k, err := base64.URLEncoding.DecodeString(string(b)); err == nil && len(k) == 32 {
			return k, nil
		}
		return nil, fmt.Errorf("corrupt key file %s", path)
	}
	k := make([]byte, 32)
	if _, err := rand.Read(k); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(base64.URLEncoding.EncodeToString(k)), 0o600); err != nil {
		return nil, err
	}
	return k, nil
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.dir, userID, credentialFile)
}

// Has reports whether credentials exist for the tenant.
func (s *Store) Has(userID string) bool {
	_, err := os.Stat(s.path(userID))
	return err == nil
}

// Save validates and seals the tenant's credential bundle. All five fields
// are required.
func (s *Store) Save(userID string, creds model.CredentialBundle) error {
	missing := ""
	switch {
	case creds.APIKey == "":
		missing = "api_key"
	case creds.APISecret == "":
		missing = "api_secret"
	case creds.AccessToken == "":
		missing = "access_token"
	case creds.AccessTokenSecret == "":
		missing = "access_token_secret"
	case creds.BearerToken == "":
		missing = "bearer_token"
	}
	if missing != "" {
		return fmt.Errorf("missing required credential: %s", missing)
	}
	plain, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	sealed, err := s.seal(plain)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path(userID)), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path(userID), sealed, 0o600)
}

// Load opens and decrypts the tenant's bundle.
func (s *Store) Load(userID string) (model.CredentialBundle, error) {
	var creds model.CredentialBundle
	sealed, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return creds, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return creds, err
	}
	plain, err := s.open(sealed)
	if err != nil {
		return creds, fmt.Errorf("decrypt credentials for %s: %w", userID, err)
	}
	if err := json.Unmarshal(plain, &creds); err != nil {
		return creds, err
	}
	return creds, nil
}

// Delete removes the tenant's stored credentials. Removing credentials that
// do not exist is not an error.
func (s *Store) Delete(userID string) error {
	err := os.Remove(s.path(userID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ct := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ct, nil)
}
