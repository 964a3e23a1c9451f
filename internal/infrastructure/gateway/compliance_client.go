package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
)

// ComplianceClient talks to the compliance side of the payments API: payer
// onboarding (KYC + agreement) and offramp payment-detail registration.
type ComplianceClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewComplianceClient(baseURL, apiKey string) *ComplianceClient {
	return &ComplianceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PayerProfile is the KYC profile submitted for a payer.
type PayerProfile struct {
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	BusinessName    string `json:"businessName,omitempty"`
	BeneficiaryType string `json:"beneficiaryType"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	AddressLine1    string `json:"addressLine1"`
	AddressLine2    string `json:"addressLine2,omitempty"`
	City            string `json:"city"`
	State           string `json:"state,omitempty"`
	PostalCode      string `json:"postalCode"`
	Country         string `json:"country"`
	Nationality     string `json:"nationality,omitempty"`
	Phone           string `json:"phone,omitempty"`
	SSN             string `json:"ssn,omitempty"`
}

// PayerPaymentDetail is a payer-scoped registration of a beneficiary's bank
// account with the provider.
type PayerPaymentDetail struct {
	PayerEmail      string `json:"payerEmail"`
	BankName        string `json:"bankName"`
	AccountName     string `json:"accountName"`
	BeneficiaryType string `json:"beneficiaryType"`
	AccountNumber   string `json:"accountNumber,omitempty"`
	RoutingNumber   string `json:"routingNumber,omitempty"`
	IBAN            string `json:"iban,omitempty"`
	SwiftBic        string `json:"swiftBic,omitempty"`
	SortCode        string `json:"sortCode,omitempty"`
	Currency        string `json:"currency"`
	RailsType       string `json:"railsType,omitempty"`
	AddressLine1    string `json:"addressLine1"`
	AddressLine2    string `json:"addressLine2,omitempty"`
	City            string `json:"city"`
	State           string `json:"state,omitempty"`
	PostalCode      string `json:"postalCode"`
	Country         string `json:"country"`
}

// CreatePayer submits a payer's compliance profile, starting KYC.
func (c *ComplianceClient) CreatePayer(ctx context.Context, profile *PayerProfile) error {
	return c.do(ctx, http.MethodPost, "/payer", profile, nil)
}

// UpdatePayer patches a payer record; used to mark the agreement signed.
func (c *ComplianceClient) UpdatePayer(ctx context.Context, email string, agreementCompleted bool) error {
	body := map[string]interface{}{
		"agreementCompleted": agreementCompleted,
	}
	return c.do(ctx, http.MethodPatch, "/payer/"+url.PathEscape(email), body, nil)
}

// GetPayerStatus fetches the payer's compliance state. The provider answers
// 404 until the payer profile exists; that maps to the not_started defaults
// rather than an error.
func (c *ComplianceClient) GetPayerStatus(ctx context.Context, email string) (*entities.ComplianceStatus, error) {
	var result struct {
		KYCStatus       string `json:"kycStatus"`
		AgreementStatus string `json:"agreementStatus"`
		IsCompliant     bool   `json:"isCompliant"`
		AgreementURL    string `json:"agreementUrl"`
		KYCURL          string `json:"kycUrl"`
	}

	err := c.doWith404(ctx, http.MethodGet, "/payer/"+url.PathEscape(email)+"/status", nil, &result)
	if err != nil {
		if domainerrors.IsNotFound(err) {
			return entities.DefaultComplianceStatus(), nil
		}
		return nil, err
	}

	return &entities.ComplianceStatus{
		KYCStatus:       entities.KYCStatus(result.KYCStatus),
		AgreementStatus: entities.AgreementStatus(result.AgreementStatus),
		IsCompliant:     result.IsCompliant,
		AgreementURL:    null.NewString(result.AgreementURL, result.AgreementURL != ""),
		KYCURL:          null.NewString(result.KYCURL, result.KYCURL != ""),
	}, nil
}

// CreatePayerPaymentDetail registers bank details for a payer and returns
// the provider's identifier for the pair.
func (c *ComplianceClient) CreatePayerPaymentDetail(ctx context.Context, detail *PayerPaymentDetail) (string, error) {
	var result struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/payer/"+url.PathEscape(detail.PayerEmail)+"/payment-details", detail, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", domainerrors.GatewayError("compliance api returned no payment detail id", nil)
	}
	return result.ID, nil
}

func (c *ComplianceClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	err := c.doWith404(ctx, method, path, body, out)
	if err != nil && domainerrors.IsNotFound(err) {
		return gatewayStatusError("compliance api", http.StatusNotFound, nil)
	}
	return err
}

// doWith404 keeps 404 distinguishable for callers that treat it as a state.
func (c *ComplianceClient) doWith404(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainerrors.GatewayError("compliance api unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domainerrors.GatewayError("reading compliance api response failed", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domainerrors.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gatewayStatusError("compliance api", resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return domainerrors.GatewayError("decoding compliance api response failed", err)
		}
	}
	return nil
}
