package entities

import (
	"testing"
	"time"
)

func TestTotalAmount(t *testing.T) {
	items := []InvoiceItem{
		{Description: "Consulting", Quantity: 10, Price: 150},
		{Description: "Hosting", Quantity: 2, Price: 25.5},
	}
	if got := TotalAmount(items); got != 1551 {
		t.Fatalf("expected 1551, got %v", got)
	}
	if got := TotalAmount(nil); got != 0 {
		t.Fatalf("expected 0 for no items, got %v", got)
	}
}

func TestInvoice_TermDays(t *testing.T) {
	inv := &Invoice{
		IssuedDate: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
	}
	if got := inv.TermDays(); got != 14 {
		t.Fatalf("expected 14 days, got %d", got)
	}

	// Timezone offsets below a day must not shift the count.
	loc := time.FixedZone("UTC+11", 11*3600)
	inv = &Invoice{
		IssuedDate: time.Date(2026, 7, 1, 3, 0, 0, 0, loc),
		DueDate:    time.Date(2026, 7, 31, 1, 0, 0, 0, time.UTC),
	}
	if got := inv.TermDays(); got != 31 {
		t.Fatalf("expected 31 days, got %d", got)
	}

	// Due before issued clamps to zero.
	inv = &Invoice{
		IssuedDate: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	if got := inv.TermDays(); got != 0 {
		t.Fatalf("expected 0 days, got %d", got)
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	if got := FormatInvoiceNumber(now, 4); got != "202607-0004" {
		t.Fatalf("expected 202607-0004, got %s", got)
	}

	// The month comes from UTC, not the local zone.
	loc := time.FixedZone("UTC-10", -10*3600)
	endOfMonth := time.Date(2026, 7, 31, 20, 0, 0, 0, loc)
	if got := FormatInvoiceNumber(endOfMonth, 1); got != "202608-0001" {
		t.Fatalf("expected 202608-0001, got %s", got)
	}
}

func TestInvoiceStatus_IsValid(t *testing.T) {
	for _, s := range []InvoiceStatus{
		InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCryptoPaid,
		InvoiceStatusProcessing, InvoiceStatusOfframpInitiated,
		InvoiceStatusOfframpPending, InvoiceStatusOfframpFailed,
	} {
		if !s.IsValid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if InvoiceStatus("cancelled").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}

func TestInvoiceStatus_IsTerminal(t *testing.T) {
	if !InvoiceStatusPaid.IsTerminal() || !InvoiceStatusCryptoPaid.IsTerminal() {
		t.Fatal("paid statuses are terminal")
	}
	if !InvoiceStatusOfframpFailed.IsTerminal() {
		t.Fatal("offramp failure is terminal")
	}
	if InvoiceStatusProcessing.IsTerminal() || InvoiceStatusOfframpPending.IsTerminal() {
		t.Fatal("in-flight statuses are not terminal")
	}
}

func TestRecurrenceFrequency_IsValid(t *testing.T) {
	if !FrequencyMonthly.IsValid() {
		t.Fatal("MONTHLY should be valid")
	}
	if RecurrenceFrequency("monthly").IsValid() {
		t.Fatal("frequencies are upper-case identifiers")
	}
}
