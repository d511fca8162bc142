package tokenstore

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrUnsealFailed is returned when a sealed token cannot be opened, either
// because the passphrase is wrong or the file is corrupted.
var ErrUnsealFailed = errors.New("tokenstore: cannot unseal token (wrong passphrase or corrupted file)")

var sealMagic = []byte("NGT1")

const (
	saltLen = 16

	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// sealer encrypts the token with XChaCha20-Poly1305 under a key derived from
// a passphrase with Argon2id. A fresh salt is drawn per seal and stored in
// the blob: magic | salt | nonce | ciphertext.
type sealer struct {
	passphrase []byte
}

func (s *sealer) key(salt []byte) []byte {
	return argon2.IDKey(s.passphrase, salt, argon2Time, argon2Memory, argon2Threads, chacha20poly1305.KeySize)
}

func (s *sealer) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("tokenstore: read salt: %w", err)
	}
	aead, err := chacha20poly1305.NewX(s.key(salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("tokenstore: read nonce: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+saltLen+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, []byte(TokenKey)), nil
}

func (s *sealer) open(blob []byte) ([]byte, error) {
	if !isSealed(blob) {
		return nil, ErrUnsealFailed
	}
	blob = blob[len(sealMagic):]
	if len(blob) < saltLen+chacha20poly1305.NonceSizeX {
		return nil, ErrUnsealFailed
	}
	salt, rest := blob[:saltLen], blob[saltLen:]
	aead, err := chacha20poly1305.NewX(s.key(salt))
	if err != nil {
		return nil, err
	}
	nonce, ciphertext := rest[:aead.NonceSize()], rest[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(TokenKey))
	if err != nil {
		return nil, ErrUnsealFailed
	}
	return plaintext, nil
}

func isSealed(blob []byte) bool {
	return bytes.HasPrefix(blob, sealMagic)
}
