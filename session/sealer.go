package session

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	sealVersion = byte(1)
	sealInfo    = "venmo-sdk session cache"
)

var ErrSealedPayload = errors.New("sealed session payload is corrupt or keyed differently")

// Sealer encrypts persisted sessions with XChaCha20-Poly1305. The key is
// derived per app from the app secret, and the app id is bound as additional
// data so a payload cannot be replayed under another app.
type Sealer struct {
	secret []byte
}

func NewSealer(appSecret string) *Sealer {
	return &Sealer{secret: []byte(appSecret)}
}

func (s *Sealer) Seal(appID string, plaintext []byte) ([]byte, error) {
	aead, err := s.aead(appID)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := append([]byte{sealVersion}, nonce...)
	return aead.Seal(out, nonce, plaintext, []byte(appID)), nil
}

func (s *Sealer) Open(appID string, sealed []byte) ([]byte, error) {
	aead, err := s.aead(appID)
	if err != nil {
		return nil, err
	}
	if len(sealed) < 1+aead.NonceSize()+aead.Overhead() || sealed[0] != sealVersion {
		return nil, ErrSealedPayload
	}
	nonce := sealed[1 : 1+aead.NonceSize()]
	plaintext, err := aead.Open(nil, nonce, sealed[1+aead.NonceSize():], []byte(appID))
	if err != nil {
		return nil, ErrSealedPayload
	}
	return plaintext, nil
}

func (s *Sealer) aead(appID string) (cipher.AEAD, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("sealer requires a non-empty secret")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, s.secret, []byte(appID), []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive cache key: %w", err)
	}
	return chacha20poly1305.NewX(key)
}
