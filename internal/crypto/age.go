package crypto

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/fjcero/ClearGDPR/internal/model"
)

var (
	_ model.Cipher       = (*AgeCipher)(nil)
	_ model.KeyGenerator = (*AgeCipher)(nil)
)

// AgeCipher encrypts personal data with filippo.io/age X25519 identities.
// The identity string is the stored key material, so destroying the key row
// leaves the retained ciphertext permanently undecryptable.
type AgeCipher struct{}

func NewAgeCipher() *AgeCipher {
	return &AgeCipher{}
}

// GenerateKey returns a fresh X25519 identity in age's native encoding.
func (c *AgeCipher) GenerateKey() (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("failed to generate identity: %w", err)
	}

	return identity.String(), nil
}

// Encrypt seals plaintext for the recipient derived from key.
func (c *AgeCipher) Encrypt(plaintext []byte, key string) ([]byte, error) {
	identity, err := age.ParseX25519Identity(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key material: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, identity.Recipient())
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted writer: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("failed to encrypt data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize encryption: %w", err)
	}

	return buf.Bytes(), nil
}

// Decrypt opens ciphertext with the identity in key. Malformed or foreign
// ciphertext fails with model.ErrDecrypt.
func (c *AgeCipher) Decrypt(ciphertext []byte, key string) ([]byte, error) {
	identity, err := age.ParseX25519Identity(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key material: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDecrypt, err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDecrypt, err)
	}

	return plaintext, nil
}
