package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"easy-invoice.backend/internal/infrastructure/models"
	"easy-invoice.backend/pkg/crypto"
)

const testEncryptionKeyHex = "0303030303030303030303030303030303030303030303030303030303030303"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")

	cipher, err := crypto.NewFieldCipher(testEncryptionKeyHex, crypto.VersionV1)
	require.NoError(t, err)
	models.SetFieldCipher(cipher)
	t.Cleanup(func() { models.SetFieldCipher(nil) })

	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE easyinvoice_users (
		id TEXT PRIMARY KEY,
		google_id TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		kyc_status TEXT NOT NULL DEFAULT 'not_started',
		agreement_status TEXT NOT NULL DEFAULT 'not_started',
		is_compliant BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE easyinvoice_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		created_at DATETIME
	);`)
}

func createInvoiceTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE easyinvoice_invoices (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		request_id TEXT NOT NULL UNIQUE,
		payment_reference TEXT,
		invoice_number TEXT NOT NULL,
		issued_date DATETIME NOT NULL,
		due_date DATETIME NOT NULL,
		client_name TEXT NOT NULL,
		client_email TEXT NOT NULL,
		creator_name TEXT NOT NULL,
		creator_email TEXT NOT NULL,
		items TEXT NOT NULL,
		notes TEXT,
		amount REAL NOT NULL,
		invoice_currency TEXT NOT NULL,
		payment_currency TEXT NOT NULL,
		payee TEXT NOT NULL,
		status TEXT NOT NULL,
		is_recurring BOOLEAN NOT NULL DEFAULT 0,
		recurrence_frequency TEXT,
		recurrence_start_date DATETIME,
		is_recurrence_stopped BOOLEAN NOT NULL DEFAULT 0,
		original_request_id TEXT,
		original_payment_reference TEXT,
		is_crypto_to_fiat BOOLEAN NOT NULL DEFAULT 0,
		payment_details_id TEXT,
		invoiced_to TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createPaymentDetailsTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE easyinvoice_payment_details (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		bank_name TEXT NOT NULL,
		account_name TEXT NOT NULL,
		beneficiary_type TEXT NOT NULL,
		account_number TEXT,
		routing_number TEXT,
		iban TEXT,
		swift_bic TEXT,
		sort_code TEXT,
		currency TEXT NOT NULL,
		rails_type TEXT,
		address_line1 TEXT,
		address_line2 TEXT,
		city TEXT,
		state TEXT,
		postal_code TEXT,
		country TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE easyinvoice_payment_details_payers (
		id TEXT PRIMARY KEY,
		payment_details_id TEXT NOT NULL,
		payer_id TEXT NOT NULL,
		status TEXT NOT NULL,
		external_payment_detail_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createInvoiceMeTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE easyinvoice_invoice_me_links (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		label TEXT NOT NULL,
		created_at DATETIME
	);`)
}
