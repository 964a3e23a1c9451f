package entities

import "strings"

// InvoiceCurrencies are the currencies an invoice can be denominated in.
var InvoiceCurrencies = []string{
	"USD",
	"ETH-sepolia-sepolia",
	"FAU-sepolia",
	"fUSDC-sepolia",
	"fUSDT-sepolia",
}

// paymentCurrencies maps an invoice currency to the currencies it may be
// settled in. Fiat invoices settle in crypto; crypto invoices settle in kind.
var paymentCurrencies = map[string][]string{
	"USD":                 {"ETH-sepolia-sepolia", "FAU-sepolia"},
	"ETH-sepolia-sepolia": {"ETH-sepolia-sepolia"},
	"FAU-sepolia":         {"FAU-sepolia"},
	"fUSDC-sepolia":       {"fUSDC-sepolia"},
	"fUSDT-sepolia":       {"fUSDT-sepolia"},
}

// ChainToID maps upper-case chain names to EVM numeric chain IDs.
var ChainToID = map[string]int64{
	"SEPOLIA":  11155111,
	"BASE":     8453,
	"ETHEREUM": 1,
	"ARBITRUM": 42161,
	"OPTIMISM": 10,
	"POLYGON":  137,
}

// chainAliases normalizes the chain suffix used in currency identifiers to
// the canonical chain name used by route descriptors.
var chainAliases = map[string]string{
	"matic":        "polygon",
	"arbitrum-one": "arbitrum",
	"mainnet":      "ethereum",
}

// IsInvoiceCurrency reports whether currency is a supported invoice currency.
func IsInvoiceCurrency(currency string) bool {
	_, ok := paymentCurrencies[currency]
	return ok
}

// PaymentCurrenciesFor returns the settlement currencies allowed for an
// invoice currency, or nil when the invoice currency is unknown.
func PaymentCurrenciesFor(invoiceCurrency string) []string {
	allowed, ok := paymentCurrencies[invoiceCurrency]
	if !ok {
		return nil
	}
	out := make([]string, len(allowed))
	copy(out, allowed)
	return out
}

// IsValidPaymentCurrency reports whether paymentCurrency is allowed for the
// given invoice currency.
func IsValidPaymentCurrency(invoiceCurrency, paymentCurrency string) bool {
	for _, c := range PaymentCurrenciesFor(invoiceCurrency) {
		if c == paymentCurrency {
			return true
		}
	}
	return false
}

// ChainOfCurrency extracts the chain name embedded in a currency identifier
// of the form "<TOKEN>-<chain>" (e.g. "USDC-matic" -> "polygon"). The last
// hyphen-separated segment is the chain; aliases are normalized. Returns ""
// for currencies without a chain suffix (e.g. "USD").
func ChainOfCurrency(currency string) string {
	idx := strings.LastIndex(currency, "-")
	if idx < 0 {
		return ""
	}
	chain := strings.ToLower(currency[idx+1:])
	if canonical, ok := chainAliases[chain]; ok {
		return canonical
	}
	return chain
}

// FormatCurrencyLabel returns the human-readable label for a currency.
func FormatCurrencyLabel(currency string) string {
	switch currency {
	case "ETH-sepolia-sepolia":
		return "Sepolia ETH"
	case "FAU-sepolia":
		return "Sepolia Faucet Token (FAU)"
	case "fUSDC-sepolia":
		return "Sepolia USDC"
	case "fUSDT-sepolia":
		return "Sepolia USDT"
	case "USD":
		return "US Dollar"
	default:
		return currency
	}
}
