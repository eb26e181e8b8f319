package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength   = 32
	nonceLength = 12
	saltLength  = 32
	iterations  = 100000
)

var (
	// ErrInvalidPassword is returned when sealed data cannot be opened with the given password.
	ErrInvalidPassword = errors.New("invalid password or corrupted data")

	ErrPasswordRequired = errors.New("password required for sealed data")
)

type EncryptedData struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func Encrypt(data []byte, password string) (*EncryptedData, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	aesGCM, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return &EncryptedData{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aesGCM.Seal(nil, nonce, data, nil),
	}, nil
}

func Decrypt(encData *EncryptedData, password string) ([]byte, error) {
	if encData == nil {
		return nil, errors.New("encrypted data is nil")
	}

	aesGCM, err := newGCM(password, encData.Salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, encData.Nonce, encData.Ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}

	return plaintext, nil
}

// Seal marshals v to JSON and encrypts it with password.
func Seal(v any, password string) (*EncryptedData, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sealed value: %w", err)
	}
	return Encrypt(data, password)
}

// Open decrypts encData and unmarshals the JSON payload into v.
func Open(encData *EncryptedData, password string, v any) error {
	if password == "" {
		return ErrPasswordRequired
	}
	data, err := Decrypt(encData, password)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal sealed value: %w", err)
	}
	return nil
}
