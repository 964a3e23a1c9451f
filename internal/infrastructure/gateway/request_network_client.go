package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
)

// RequestNetworkClient talks to the Request Network API: request creation,
// pay payloads, routes, recurrence control and signed-intent submission.
type RequestNetworkClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRequestNetworkClient(baseURL, apiKey string) *RequestNetworkClient {
	return &RequestNetworkClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateRequestParams describes a new payment request.
type CreateRequestParams struct {
	Amount          string `json:"amount"`
	Payee           string `json:"payee"`
	InvoiceCurrency string `json:"invoiceCurrency"`
	PaymentCurrency string `json:"paymentCurrency"`

	Recurrence *RecurrenceParams `json:"recurrence,omitempty"`

	IsCryptoToFiat   bool   `json:"isCryptoToFiat,omitempty"`
	PaymentDetailsID string `json:"paymentDetailsId,omitempty"`
}

// RecurrenceParams mirror the API's recurrence block.
type RecurrenceParams struct {
	StartDate time.Time `json:"startDate"`
	Frequency string    `json:"frequency"`
}

// CreateRequestResult is the identifier pair the API hands back.
type CreateRequestResult struct {
	RequestID        string `json:"requestID"`
	PaymentReference string `json:"paymentReference"`
}

// PayDataQuery selects wallet and route context for a pay payload.
type PayDataQuery struct {
	Wallet           string
	Chain            string
	Token            string
	PaymentDetailsID string
}

// DirectPayParams requests a pay payload without a stored invoice.
type DirectPayParams struct {
	Amount          string `json:"amount"`
	Payee           string `json:"payee"`
	InvoiceCurrency string `json:"invoiceCurrency"`
	PaymentCurrency string `json:"paymentCurrency"`
	Wallet          string `json:"wallet"`
}

// CreateRequest registers a new request and returns its identifiers.
func (c *RequestNetworkClient) CreateRequest(ctx context.Context, params CreateRequestParams) (*CreateRequestResult, error) {
	var result CreateRequestResult
	if err := c.do(ctx, http.MethodPost, "/request", params, &result); err != nil {
		return nil, err
	}
	if result.RequestID == "" {
		return nil, domainerrors.GatewayError("request network returned no request id", nil)
	}
	return &result, nil
}

// GetPayData fetches the pay payload for a request. The payload shape decides
// the settlement protocol, so it is validated on decode.
func (c *RequestNetworkClient) GetPayData(ctx context.Context, requestID string, q PayDataQuery) (*entities.PayData, error) {
	values := url.Values{}
	values.Set("wallet", q.Wallet)
	if q.Chain != "" {
		values.Set("chain", q.Chain)
	}
	if q.Token != "" {
		values.Set("token", q.Token)
	}
	if q.PaymentDetailsID != "" {
		values.Set("paymentDetailsId", q.PaymentDetailsID)
	}

	var raw json.RawMessage
	path := "/request/" + url.PathEscape(requestID) + "/pay?" + values.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}

	data, err := entities.DecodePayData(raw)
	if err != nil {
		return nil, domainerrors.GatewayError("request network returned an invalid pay payload", err)
	}
	return data, nil
}

// GetRoutes lists candidate payment routes for a request.
func (c *RequestNetworkClient) GetRoutes(ctx context.Context, paymentReference, wallet string) ([]*entities.PaymentRoute, error) {
	var result struct {
		Routes []*entities.PaymentRoute `json:"routes"`
	}
	path := "/request/" + url.PathEscape(paymentReference) + "/routes?wallet=" + url.QueryEscape(wallet)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Routes, nil
}

// StopRecurrence halts a recurring request series gateway-side.
func (c *RequestNetworkClient) StopRecurrence(ctx context.Context, requestID string) error {
	path := "/request/" + url.PathEscape(requestID) + "/stop-recurrence"
	return c.do(ctx, http.MethodPatch, path, nil, nil)
}

// SubmitPaymentIntent posts the signed bundle for a cross-chain intent.
func (c *RequestNetworkClient) SubmitPaymentIntent(ctx context.Context, intentID string, payload *entities.SignedIntentPayload) error {
	path := "/payment-intents/" + url.PathEscape(intentID)
	return c.do(ctx, http.MethodPost, path, payload, nil)
}

// Pay fetches a pay payload for an ad-hoc payment with no stored invoice.
func (c *RequestNetworkClient) Pay(ctx context.Context, params DirectPayParams) (*entities.PayData, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/pay", params, &raw); err != nil {
		return nil, err
	}

	data, err := entities.DecodePayData(raw)
	if err != nil {
		return nil, domainerrors.GatewayError("request network returned an invalid pay payload", err)
	}
	return data, nil
}

func (c *RequestNetworkClient) do(ctx context.Context, method, path string, body, out interface{}) error {
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
		return domainerrors.GatewayError("request network unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domainerrors.GatewayError("reading request network response failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gatewayStatusError("request network", resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return domainerrors.GatewayError("decoding request network response failed", err)
		}
	}
	return nil
}

// gatewayStatusError surfaces the upstream message so operators can see what
// the provider rejected.
func gatewayStatusError(provider string, status int, body []byte) error {
	message := strings.TrimSpace(string(body))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			message = payload.Message
		} else if payload.Error != "" {
			message = payload.Error
		}
	}
	return domainerrors.GatewayError(
		fmt.Sprintf("%s returned status %d: %s", provider, status, message), nil)
}
