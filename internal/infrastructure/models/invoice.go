package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice rows keep line items as a JSON document; the repository marshals
// them on the way in and out.
type Invoice struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID                   uuid.UUID `gorm:"type:uuid;not null;index"`
	RequestID                string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PaymentReference         string    `gorm:"type:varchar(255);index"`
	InvoiceNumber            string    `gorm:"type:varchar(50);not null"`
	IssuedDate               time.Time `gorm:"not null"`
	DueDate                  time.Time `gorm:"not null"`
	ClientName               string    `gorm:"type:varchar(255);not null"`
	ClientEmail              string    `gorm:"type:varchar(255);not null"`
	CreatorName              string    `gorm:"type:varchar(255);not null"`
	CreatorEmail             string    `gorm:"type:varchar(255);not null"`
	Items                    string    `gorm:"type:jsonb;not null"`
	Notes                    string    `gorm:"type:text"`
	Amount                   float64   `gorm:"type:decimal(18,2);not null"`
	InvoiceCurrency          string    `gorm:"type:varchar(50);not null"`
	PaymentCurrency          string    `gorm:"type:varchar(50);not null"`
	Payee                    string    `gorm:"type:varchar(255);not null"`
	Status                   string    `gorm:"type:varchar(50);not null;index"`
	IsRecurring              bool      `gorm:"not null;default:false"`
	RecurrenceFrequency      string    `gorm:"type:varchar(20)"`
	RecurrenceStartDate      *time.Time
	IsRecurrenceStopped      bool   `gorm:"not null;default:false"`
	OriginalRequestID        string `gorm:"type:varchar(255);index"`
	OriginalPaymentReference string `gorm:"type:varchar(255)"`
	IsCryptoToFiat           bool   `gorm:"not null;default:false"`
	PaymentDetailsID         string `gorm:"type:varchar(255)"`
	InvoicedTo               string `gorm:"type:varchar(255);index"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
	DeletedAt                gorm.DeletedAt `gorm:"index"`
}

func (Invoice) TableName() string {
	return "easyinvoice_invoices"
}
