package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"

	"golang.org/x/crypto/hkdf"

	dErrors "spectra/pkg/domain-errors"
)

const (
	// KeySize is the length of the configured secret and of the AES key.
	KeySize = 32
	// IVSize matches the 16-byte IV personal-data blobs were sealed with.
	IVSize = 16

	hkdfInfo = "spectra/kyc/personal-data/v1"
)

// Sealed is an AES-256-GCM ciphertext split into its stored parts, all hex.
type Sealed struct {
	Data    string `json:"encryptedData"`
	IV      string `json:"iv"`
	AuthTag string `json:"authTag"`
}

// Cipher seals structured values with a process-wide key.
type Cipher struct {
	aead      cipher.AEAD
	ephemeral bool
	random    io.Reader
}

// NewCipher builds a Cipher from a hex-encoded 32-byte secret. An empty
// secret yields a random key that lives only as long as the process;
// anything sealed with it cannot be opened after a restart.
func NewCipher(hexSecret string) (*Cipher, error) {
	var secret []byte
	ephemeral := hexSecret == ""
	if ephemeral {
		secret = make([]byte, KeySize)
		if _, err := rand.Read(secret); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeCrypto, "could not generate encryption key")
		}
	} else {
		var err error
		secret, err = hex.DecodeString(hexSecret)
		if err != nil || len(secret) != KeySize {
			return nil, dErrors.New(dErrors.CodeCrypto, "encryption key must be 32 bytes hex-encoded")
		}
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCrypto, "could not derive encryption key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCrypto, "could not init cipher")
	}
	aead, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCrypto, "could not init cipher")
	}
	return &Cipher{aead: aead, ephemeral: ephemeral, random: rand.Reader}, nil
}

// Ephemeral reports whether the key was generated for this process only.
func (c *Cipher) Ephemeral() bool {
	return c.ephemeral
}

// Encrypt JSON-encodes v and seals it under a fresh IV.
func (c *Cipher) Encrypt(v any) (Sealed, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return Sealed{}, dErrors.Wrap(err, dErrors.CodeCrypto, "could not encode plaintext")
	}
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(c.random, iv); err != nil {
		return Sealed{}, dErrors.Wrap(err, dErrors.CodeCrypto, "could not generate iv")
	}

	out := c.aead.Seal(nil, iv, plaintext, nil)
	tagAt := len(out) - c.aead.Overhead()
	return Sealed{
		Data:    hex.EncodeToString(out[:tagAt]),
		IV:      hex.EncodeToString(iv),
		AuthTag: hex.EncodeToString(out[tagAt:]),
	}, nil
}

// Decrypt opens s and decodes the JSON plaintext into out. Any tampering,
// malformed field or wrong key yields a CodeCrypto error.
func (c *Cipher) Decrypt(s Sealed, out any) error {
	data, err := hex.DecodeString(s.Data)
	if err != nil {
		return dErrors.New(dErrors.CodeCrypto, "malformed ciphertext")
	}
	iv, err := hex.DecodeString(s.IV)
	if err != nil || len(iv) != IVSize {
		return dErrors.New(dErrors.CodeCrypto, "malformed iv")
	}
	tag, err := hex.DecodeString(s.AuthTag)
	if err != nil || len(tag) != c.aead.Overhead() {
		return dErrors.New(dErrors.CodeCrypto, "malformed auth tag")
	}

	plaintext, err := c.aead.Open(nil, iv, append(data, tag...), nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeCrypto, "authentication failed")
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeCrypto, "could not decode plaintext")
	}
	return nil
}
