package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending          InvoiceStatus = "pending"
	InvoiceStatusPaid             InvoiceStatus = "paid"
	InvoiceStatusCryptoPaid       InvoiceStatus = "crypto_paid"
	InvoiceStatusProcessing       InvoiceStatus = "processing"
	InvoiceStatusOfframpInitiated InvoiceStatus = "offramp_initiated"
	InvoiceStatusOfframpPending   InvoiceStatus = "offramp_pending"
	InvoiceStatusOfframpFailed    InvoiceStatus = "offramp_failed"
)

// IsValid reports whether s is a known invoice status.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCryptoPaid,
		InvoiceStatusProcessing, InvoiceStatusOfframpInitiated,
		InvoiceStatusOfframpPending, InvoiceStatusOfframpFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the invoice instance's lifecycle.
// A recurring series may still spawn fresh instances afterwards.
func (s InvoiceStatus) IsTerminal() bool {
	switch s {
	case InvoiceStatusPaid, InvoiceStatusCryptoPaid, InvoiceStatusOfframpFailed:
		return true
	}
	return false
}

// RecurrenceFrequency represents how often a recurring invoice regenerates
type RecurrenceFrequency string

const (
	FrequencyDaily   RecurrenceFrequency = "DAILY"
	FrequencyWeekly  RecurrenceFrequency = "WEEKLY"
	FrequencyMonthly RecurrenceFrequency = "MONTHLY"
	FrequencyYearly  RecurrenceFrequency = "YEARLY"
)

// IsValid reports whether f is a known recurrence frequency.
func (f RecurrenceFrequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// InvoiceItem is one line item of an invoice
type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Invoice represents an invoice ("request") backed by a Request Network request
type Invoice struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"userId"`
	RequestID        string        `json:"requestId"`
	PaymentReference string        `json:"paymentReference"`
	InvoiceNumber    string        `json:"invoiceNumber"`
	IssuedDate       time.Time     `json:"issuedDate"`
	DueDate          time.Time     `json:"dueDate"`
	ClientName       string        `json:"clientName"`
	ClientEmail      string        `json:"clientEmail"`
	CreatorName      string        `json:"creatorName"`
	CreatorEmail     string        `json:"creatorEmail"`
	Items            []InvoiceItem `json:"items"`
	Notes            string        `json:"notes,omitempty"`
	Amount           float64       `json:"amount"`
	InvoiceCurrency  string        `json:"invoiceCurrency"`
	PaymentCurrency  string        `json:"paymentCurrency"`
	Payee            string        `json:"payee"`
	Status           InvoiceStatus `json:"status"`

	// Recurrence
	IsRecurring         bool                `json:"isRecurring"`
	RecurrenceStartDate null.Time           `json:"startDate,omitempty"`
	RecurrenceFrequency RecurrenceFrequency `json:"frequency,omitempty"`
	IsRecurrenceStopped bool                `json:"isRecurrenceStopped"`

	// Set on instances spawned from a recurring series
	OriginalRequestID        null.String `json:"originalRequestId,omitempty"`
	OriginalPaymentReference null.String `json:"originalPaymentReference,omitempty"`

	// Crypto-to-fiat settlement
	IsCryptoToFiat   bool        `json:"isCryptoToFiat"`
	PaymentDetailsID null.String `json:"paymentDetailsId,omitempty"`

	// Optional link to the user being invoiced (invoice-me flow)
	InvoicedTo null.String `json:"invoicedTo,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt null.Time `json:"-"`
}

// TotalAmount sums quantity x price over the line items. The stored amount is
// always this sum at creation time and is never edited independently.
func TotalAmount(items []InvoiceItem) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}

// TermDays returns the invoice term length in whole days, clamped to >= 0.
// Both dates are truncated to midnight UTC before differencing so that
// sub-day offsets introduced by timezones do not shift the count.
func (i *Invoice) TermDays() int {
	issued := atMidnightUTC(i.IssuedDate)
	due := atMidnightUTC(i.DueDate)
	days := int(due.Sub(issued).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func atMidnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatInvoiceNumber renders the per-user monthly sequence as "YYYYMM-NNNN".
// seq is 1-based within the calendar month of now.
func FormatInvoiceNumber(now time.Time, seq int) string {
	return fmt.Sprintf("%s-%04d", now.UTC().Format("200601"), seq)
}
