package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// Version tags a field-encryption key generation. Stored values carry their
// version as a "<version>:" prefix so keys can rotate without re-encrypting
// history; values with no prefix were written before versioning existed and
// decrypt with the legacy key.
type Version string

const (
	VersionV1 Version = "v1"
	VersionV2 Version = "v2"
)

const keyDerivationInfo = "easyinvoice/field-encryption"

var (
	ErrUnknownVersion  = errors.New("unknown encryption version")
	ErrCiphertextShort = errors.New("ciphertext too short")
)

// FieldCipher encrypts sensitive database columns with AES-256-GCM.
// Per-version keys are derived from the master key via HKDF-SHA256 so a
// version bump yields an unrelated key without new key material.
type FieldCipher struct {
	current   Version
	keys      map[Version][]byte
	legacyKey []byte
}

// NewFieldCipher builds a cipher from a 32-byte hex master key. versions
// must include current; the legacy (prefixless) format decrypts with the
// master key directly.
func NewFieldCipher(masterKeyHex string, current Version, versions ...Version) (*FieldCipher, error) {
	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, errors.New("invalid encryption key hex")
	}
	if len(masterKey) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}

	keys := make(map[Version][]byte, len(versions)+1)
	for _, v := range append(versions, current) {
		if _, ok := keys[v]; ok {
			continue
		}
		key := make([]byte, 32)
		kdf := hkdf.New(sha256.New, masterKey, []byte(v), []byte(keyDerivationInfo))
		if _, err := io.ReadFull(kdf, key); err != nil {
			return nil, fmt.Errorf("derive key for version %s: %w", v, err)
		}
		keys[v] = key
	}

	return &FieldCipher{
		current:   current,
		keys:      keys,
		legacyKey: masterKey,
	}, nil
}

// Encrypt seals plaintext under the current version's key and returns
// "<version>:<hex ciphertext>".
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	sealed, err := seal(c.keys[c.current], []byte(plaintext))
	if err != nil {
		return "", err
	}
	return string(c.current) + ":" + sealed, nil
}

// Decrypt opens a stored value, dispatching on its version prefix. A value
// without a prefix is treated as legacy ciphertext.
func (c *FieldCipher) Decrypt(stored string) (string, error) {
	version, ciphertext, ok := strings.Cut(stored, ":")
	if !ok {
		plain, err := open(c.legacyKey, stored)
		if err != nil {
			return "", err
		}
		return string(plain), nil
	}

	key, known := c.keys[Version(version)]
	if !known {
		return "", fmt.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	plain, err := open(key, ciphertext)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// CurrentVersion returns the version new values are written under.
func (c *FieldCipher) CurrentVersion() Version {
	return c.current
}

func seal(key, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return hex.EncodeToString(ciphertext), nil
}

func open(key []byte, ciphertextHex string) ([]byte, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, ErrCiphertextShort
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// EncryptLegacy seals plaintext with the legacy key and no version prefix.
// Only used by tests and the migration path.
func (c *FieldCipher) EncryptLegacy(plaintext string) (string, error) {
	return seal(c.legacyKey, []byte(plaintext))
}
