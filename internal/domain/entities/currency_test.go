package entities

import "testing"

func TestChainOfCurrency(t *testing.T) {
	cases := map[string]string{
		"USD":           "",
		"USDC-matic":    "polygon",
		"USDC-base":     "base",
		"DAI-mainnet":   "ethereum",
		"ARB-arbitrum":  "arbitrum",
		"FAU-sepolia":   "sepolia",
		"fUSDC-sepolia": "sepolia",
	}
	for currency, want := range cases {
		if got := ChainOfCurrency(currency); got != want {
			t.Fatalf("ChainOfCurrency(%q) = %q, want %q", currency, got, want)
		}
	}
}

func TestIsValidPaymentCurrency(t *testing.T) {
	if !IsValidPaymentCurrency("USD", "FAU-sepolia") {
		t.Fatal("FAU-sepolia should settle a USD invoice")
	}
	if !IsValidPaymentCurrency("FAU-sepolia", "FAU-sepolia") {
		t.Fatal("crypto invoices settle in kind")
	}
	if IsValidPaymentCurrency("FAU-sepolia", "ETH-sepolia-sepolia") {
		t.Fatal("crypto invoices must not settle in another token")
	}
	if IsValidPaymentCurrency("JPY", "FAU-sepolia") {
		t.Fatal("unknown invoice currency has no settlement currencies")
	}
}

func TestPaymentCurrenciesFor_CopiesSlice(t *testing.T) {
	first := PaymentCurrenciesFor("USD")
	if len(first) == 0 {
		t.Fatal("expected settlement currencies for USD")
	}
	first[0] = "tampered"
	if got := PaymentCurrenciesFor("USD")[0]; got == "tampered" {
		t.Fatal("returned slice must not alias internal state")
	}

	if PaymentCurrenciesFor("JPY") != nil {
		t.Fatal("unknown currency should yield nil")
	}
}

func TestIsInvoiceCurrency(t *testing.T) {
	if !IsInvoiceCurrency("USD") {
		t.Fatal("USD is an invoice currency")
	}
	if IsInvoiceCurrency("usd") {
		t.Fatal("currency identifiers are case sensitive")
	}
}
