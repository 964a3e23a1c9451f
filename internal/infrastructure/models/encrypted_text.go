package models

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"easy-invoice.backend/pkg/crypto"
)

// fieldCipher encrypts sensitive columns at rest. It is set once at startup;
// a nil cipher makes every encrypted read/write fail loudly rather than
// silently persisting plaintext.
var fieldCipher *crypto.FieldCipher

var errCipherNotConfigured = errors.New("field cipher not configured")

// SetFieldCipher installs the cipher used by EncryptedText columns.
func SetFieldCipher(c *crypto.FieldCipher) {
	fieldCipher = c
}

// EncryptedText is a text column stored as "<version>:<ciphertext>".
// Legacy rows without a version prefix decrypt with the legacy key.
type EncryptedText string

// Value implements driver.Valuer, sealing the plaintext on write.
func (e EncryptedText) Value() (driver.Value, error) {
	if fieldCipher == nil {
		return nil, errCipherNotConfigured
	}
	stored, err := fieldCipher.Encrypt(string(e))
	if err != nil {
		return nil, fmt.Errorf("encrypt column: %w", err)
	}
	return stored, nil
}

// Scan implements sql.Scanner, opening the stored ciphertext on read.
func (e *EncryptedText) Scan(value interface{}) error {
	if fieldCipher == nil {
		return errCipherNotConfigured
	}
	if value == nil {
		*e = ""
		return nil
	}

	var stored string
	switch v := value.(type) {
	case string:
		stored = v
	case []byte:
		stored = string(v)
	default:
		return fmt.Errorf("unsupported type %T for encrypted column", value)
	}

	plain, err := fieldCipher.Decrypt(stored)
	if err != nil {
		return fmt.Errorf("decrypt column: %w", err)
	}
	*e = EncryptedText(plain)
	return nil
}

// GormDataType tells GORM to create a plain text column.
func (EncryptedText) GormDataType() string {
	return "text"
}
