package hdvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/scrypt"
)

// EncryptOpts is the struct given to Encrypt method
type EncryptOpts struct {
	PlainText []byte
	Password  string
}

func (o EncryptOpts) validate() error {
	if len(o.PlainText) <= 0 {
		return ErrNullPlainText
	}
	if len(o.Password) <= 0 {
		return ErrNullPassword
	}
	return nil
}

// Encrypt encrypts (with AES-128) a plaintext with the provided password
func Encrypt(opts EncryptOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	key, salt, err := deriveCypherKey([]byte(opts.Password), nil)
	if err != nil {
		return "", err
	}

	blockCipher, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(blockCipher)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, opts.PlainText, nil)
	ciphertext = append(ciphertext, salt...)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptOpts is the struct given to Decrypt method
type DecryptOpts struct {
	CypherText string
	Password   string
}

func (o DecryptOpts) validate() error {
	if len(o.CypherText) <= 0 {
		return ErrNullCypherText
	}
	if _, err := base64.StdEncoding.DecodeString(o.CypherText); err != nil {
		return ErrInvalidCypherText
	}
	if len(o.Password) <= 0 {
		return ErrNullPassword
	}
	return nil
}

// Decrypt decrypts (with AES-128) a cyphertext with the provided password.
// A password that does not match the one used for encryption makes the
// authenticated decryption fail with ErrIncorrectPassword.
func Decrypt(opts DecryptOpts) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	data, _ := base64.StdEncoding.DecodeString(opts.CypherText)
	if len(data) <= saltSize {
		return nil, ErrInvalidCypherText
	}
	salt, data := data[len(data)-saltSize:], data[:len(data)-saltSize]

	key, _, err := deriveCypherKey([]byte(opts.Password), salt)
	if err != nil {
		return nil, err
	}

	return openWithKey(key, data)
}

const saltSize = 32

func openWithKey(key, data []byte) ([]byte, error) {
	blockCipher, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(blockCipher)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, ErrInvalidCypherText
	}
	nonce, text := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, text, nil)
	if err != nil {
		return nil, ErrIncorrectPassword
	}
	return plaintext, nil
}

// deriveCypherKey derives a 32 byte array key from a custom password.
// 2^18 = 262144 recommended length for interactive key-stretching
// check the doc for other recommended values:
// https://godoc.org/golang.org/x/crypto/scrypt
func deriveCypherKey(password, salt []byte) ([]byte, []byte, error) {
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, err
		}
	}
	key, err := scrypt.Key(password, salt, 262144, 8, 1, 32)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}
