package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PaymentDetailsStatus is the approval state of a (payment-details, payer)
// link, mirrored from the compliance system.
type PaymentDetailsStatus string

const (
	PaymentDetailsPending  PaymentDetailsStatus = "pending"
	PaymentDetailsApproved PaymentDetailsStatus = "approved"
	PaymentDetailsRejected PaymentDetailsStatus = "rejected"
)

// IsValid reports whether s is a known payer-link status.
func (s PaymentDetailsStatus) IsValid() bool {
	switch s {
	case PaymentDetailsPending, PaymentDetailsApproved, PaymentDetailsRejected:
		return true
	}
	return false
}

// BeneficiaryType distinguishes personal and business bank accounts
type BeneficiaryType string

const (
	BeneficiaryIndividual BeneficiaryType = "individual"
	BeneficiaryBusiness   BeneficiaryType = "business"
)

// PaymentDetails is a bank account owned by a user, used as the fiat leg of
// crypto-to-fiat settlement. Country-specific fields are optional; sensitive
// ones are encrypted at rest.
type PaymentDetails struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	BankName        string          `json:"bankName"`
	AccountName     string          `json:"accountName"`
	BeneficiaryType BeneficiaryType `json:"beneficiaryType"`
	AccountNumber   null.String     `json:"accountNumber,omitempty"`
	RoutingNumber   null.String     `json:"routingNumber,omitempty"`
	IBAN            null.String     `json:"iban,omitempty"`
	SwiftBic        null.String     `json:"swiftBic,omitempty"`
	SortCode        null.String     `json:"sortCode,omitempty"`
	AddressLine1    string          `json:"addressLine1"`
	AddressLine2    null.String     `json:"addressLine2,omitempty"`
	City            string          `json:"city"`
	State           null.String     `json:"state,omitempty"`
	PostalCode      string          `json:"postalCode"`
	Country         string          `json:"country"`
	Currency        string          `json:"currency"`
	RailsType       null.String     `json:"railsType,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// Joined payer links, when loaded
	Payers []*PaymentDetailsPayer `json:"payers,omitempty"`
}

// PaymentDetailsPayer grants one payer permission to settle into a
// PaymentDetails record, gated by compliance approval.
type PaymentDetailsPayer struct {
	ID                      uuid.UUID            `json:"id"`
	PaymentDetailsID        uuid.UUID            `json:"paymentDetailsId"`
	PayerID                 uuid.UUID            `json:"payerId"`
	Status                  PaymentDetailsStatus `json:"status"`
	ExternalPaymentDetailID string               `json:"externalPaymentDetailId"`
	CreatedAt               time.Time            `json:"createdAt"`
	UpdatedAt               time.Time            `json:"updatedAt"`
}
