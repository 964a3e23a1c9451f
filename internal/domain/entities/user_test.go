package entities

import (
	"testing"
	"time"
)

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s := &Session{ExpiresAt: now.Add(time.Hour)}
	if s.Expired(now) {
		t.Fatal("session expiring in an hour should not be expired")
	}

	s = &Session{ExpiresAt: now.Add(-time.Second)}
	if !s.Expired(now) {
		t.Fatal("session past its expiry should be expired")
	}

	// Exactly at expiry counts as expired.
	s = &Session{ExpiresAt: now}
	if !s.Expired(now) {
		t.Fatal("session at its expiry instant should be expired")
	}
}

func TestDefaultComplianceStatus(t *testing.T) {
	status := DefaultComplianceStatus()
	if status.KYCStatus != KYCNotStarted {
		t.Fatalf("expected KYC not_started, got %s", status.KYCStatus)
	}
	if status.AgreementStatus != AgreementNotStarted {
		t.Fatalf("expected agreement not_started, got %s", status.AgreementStatus)
	}
	if status.IsCompliant {
		t.Fatal("an unknown payer is never compliant")
	}
	if status.AgreementURL.Valid || status.KYCURL.Valid {
		t.Fatal("an unknown payer has no onboarding URLs")
	}
}
