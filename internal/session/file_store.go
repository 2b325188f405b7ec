package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"gosshub/client/internal/state"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

var ErrDecrypt = errors.New("token file cannot be decrypted with the configured key")

// FileStore writes the token to a single file readable only by the owner.
// With a passphrase the contents are sealed with NaCl secretbox under a key
// derived by scrypt.
type FileStore struct {
	path       string
	passphrase []byte
}

func NewFileStore(path, passphrase string) *FileStore {
	var secret []byte
	if passphrase != "" {
		secret = []byte(passphrase)
	}
	return &FileStore{path: path, passphrase: secret}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Save(_ context.Context, token string, expiresAt time.Time) error {
	data, err := encode(token, expiresAt)
	if err != nil {
		return err
	}
	if s.passphrase != nil {
		if data, err = s.seal(data); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", state.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	if s.passphrase != nil {
		if data, err = s.open(data); err != nil {
			return "", err
		}
	}
	return decode(data, time.Now())
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *FileStore) deriveKey(salt []byte) (*[keySize]byte, error) {
	raw, err := scrypt.Key(s.passphrase, salt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}

// seal lays out salt | nonce | box.
func (s *FileStore) seal(plain []byte) ([]byte, error) {
	header := make([]byte, saltSize+nonceSize)
	if _, err := io.ReadFull(rand.Reader, header); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	key, err := s.deriveKey(header[:saltSize])
	if err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	copy(nonce[:], header[saltSize:])
	return secretbox.Seal(header, plain, &nonce, key), nil
}

func (s *FileStore) open(sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return nil, ErrDecrypt
	}
	key, err := s.deriveKey(sealed[:saltSize])
	if err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])
	plain, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}
