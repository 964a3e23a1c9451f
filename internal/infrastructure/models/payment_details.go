package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentDetails stores offramp bank details. Account identifiers are
// encrypted at rest via EncryptedText.
type PaymentDetails struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID     `gorm:"type:uuid;not null;index"`
	BankName        string        `gorm:"type:varchar(255);not null"`
	AccountName     string        `gorm:"type:varchar(255);not null"`
	BeneficiaryType string        `gorm:"type:varchar(50);not null"`
	AccountNumber   EncryptedText `gorm:"type:text"`
	RoutingNumber   EncryptedText `gorm:"type:text"`
	IBAN            EncryptedText `gorm:"column:iban;type:text"`
	SwiftBic        EncryptedText `gorm:"type:text"`
	SortCode        EncryptedText `gorm:"type:text"`
	Currency        string        `gorm:"type:varchar(10);not null"`
	RailsType       string        `gorm:"type:varchar(50)"`
	AddressLine1    string        `gorm:"type:varchar(255)"`
	AddressLine2    string        `gorm:"type:varchar(255)"`
	City            string        `gorm:"type:varchar(100)"`
	State           string        `gorm:"type:varchar(100)"`
	PostalCode      string        `gorm:"type:varchar(20)"`
	Country         string        `gorm:"type:varchar(2)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (PaymentDetails) TableName() string {
	return "easyinvoice_payment_details"
}

// PaymentDetailsPayer links a payer to a beneficiary's payment details and
// tracks the provider's approval status for that pair.
type PaymentDetailsPayer struct {
	ID                      uuid.UUID `gorm:"type:uuid;primaryKey"`
	PaymentDetailsID        uuid.UUID `gorm:"type:uuid;not null;index"`
	PayerID                 uuid.UUID `gorm:"type:uuid;not null;index"`
	Status                  string    `gorm:"type:varchar(50);not null;index"`
	ExternalPaymentDetailID string    `gorm:"type:varchar(255);index"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (PaymentDetailsPayer) TableName() string {
	return "easyinvoice_payment_details_payers"
}
