package entities

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

var (
	// ErrAmbiguousPayData means a pay payload carried both on-chain
	// transactions and a payment intent.
	ErrAmbiguousPayData = errors.New("pay data carries both transactions and a payment intent")
	// ErrEmptyPayData means a pay payload carried neither settlement protocol.
	ErrEmptyPayData = errors.New("pay data carries no transactions and no payment intent")
)

// DirectRouteID is the gateway's reserved sentinel for paying the request
// contract directly instead of going through a cross-chain route.
const DirectRouteID = "REQUEST_NETWORK_PAYMENT"

// RouteType classifies a payment route for presentation. It does not change
// the settlement protocol, which is determined by the pay payload shape.
type RouteType string

const (
	RouteDirect         RouteType = "direct"
	RouteSameChainERC20 RouteType = "same-chain-erc20"
	RouteCrossChain     RouteType = "cross-chain"
	RouteCryptoToFiat   RouteType = "crypto-to-fiat"
)

// PaymentRoute is one candidate settlement route returned by the gateway.
type PaymentRoute struct {
	ID             string  `json:"id"`
	Fee            float64 `json:"fee"`
	Speed          string  `json:"speed"`
	PriceImpact    float64 `json:"price_impact"`
	Chain          string  `json:"chain"`
	Token          string  `json:"token"`
	IsCryptoToFiat bool    `json:"isCryptoToFiat,omitempty"`
}

// Classify derives the route type from the route descriptor and the
// invoice's payment currency.
func (r *PaymentRoute) Classify(paymentCurrency string, invoiceIsCryptoToFiat bool) RouteType {
	if r.IsCryptoToFiat {
		return RouteCryptoToFiat
	}
	if r.ID == DirectRouteID && !invoiceIsCryptoToFiat {
		return RouteDirect
	}
	if chain := ChainOfCurrency(paymentCurrency); chain != "" &&
		chain == strings.ToLower(r.Chain) {
		return RouteSameChainERC20
	}
	return RouteCrossChain
}

// SettlementProgress enumerates the client-visible steps of one payment
// attempt: idle -> getting-transactions -> [approving] -> paying -> idle.
type SettlementProgress string

const (
	ProgressIdle                SettlementProgress = "idle"
	ProgressGettingTransactions SettlementProgress = "getting-transactions"
	ProgressApproving           SettlementProgress = "approving"
	ProgressPaying              SettlementProgress = "paying"
)

// EvmTransaction is an unsigned transaction payload handed to the wallet.
type EvmTransaction struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value,omitempty"`
}

// PayDataMetadata carries approval hints for on-chain pay payloads.
type PayDataMetadata struct {
	NeedsApproval            bool  `json:"needsApproval"`
	ApprovalTransactionIndex int   `json:"approvalTransactionIndex"`
	ChainID                  int64 `json:"chainId,omitempty"`
}

// PaymentIntent is the signable cross-chain intent embedded in a pay payload.
// The typed data is EIP-712; the optional approval permit is ERC-2612.
type PaymentIntent struct {
	TypedData       apitypes.TypedData  `json:"typedData"`
	ApprovalPermit  *apitypes.TypedData `json:"approvalPermit,omitempty"`
	SupportsPermit  bool                `json:"supportsPermit"`
	Nonce           string              `json:"nonce"`
	Deadline        int64               `json:"deadline"`
	PermitNonce     string              `json:"permitNonce,omitempty"`
	PermitDeadline  int64               `json:"permitDeadline,omitempty"`
	ApprovalTx      *EvmTransaction     `json:"approvalTransaction,omitempty"`
	RequiredChainID int64               `json:"requiredChainId"`
}

// PayData is the gateway's pay payload. Exactly one of the two settlement
// protocols applies: on-chain transactions, or a signable payment intent.
type PayData struct {
	Transactions    []EvmTransaction `json:"transactions,omitempty"`
	Metadata        *PayDataMetadata `json:"metadata,omitempty"`
	PaymentIntentID string           `json:"paymentIntentId,omitempty"`
	PaymentIntent   *PaymentIntent   `json:"paymentIntent,omitempty"`
}

// IsIntentBased reports whether settlement goes through the signed-intent
// protocol rather than direct on-chain transactions.
func (p *PayData) IsIntentBased() bool {
	return p.PaymentIntentID != ""
}

// SignedIntentPayload is the bundle submitted back to the gateway after
// off-chain signing.
type SignedIntentPayload struct {
	IntentSignature string `json:"intentSignature"`
	PermitSignature string `json:"permitSignature,omitempty"`
	Nonce           string `json:"nonce"`
	Deadline        int64  `json:"deadline"`
	PermitNonce     string `json:"permitNonce,omitempty"`
	PermitDeadline  int64  `json:"permitDeadline,omitempty"`
}

// DecodePayData parses a raw gateway pay response, rejecting payloads that
// claim both or neither settlement protocol.
func DecodePayData(raw json.RawMessage) (*PayData, error) {
	var data PayData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data.IsIntentBased() && len(data.Transactions) > 0 {
		return nil, ErrAmbiguousPayData
	}
	if !data.IsIntentBased() && len(data.Transactions) == 0 {
		return nil, ErrEmptyPayData
	}
	return &data, nil
}
