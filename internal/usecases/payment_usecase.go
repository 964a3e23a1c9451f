package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.uber.org/zap"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/domain/repositories"
	"easy-invoice.backend/internal/infrastructure/gateway"
	"easy-invoice.backend/pkg/logger"
)

// WalletSigner abstracts the payer's wallet for settlement: chain control,
// transaction submission and EIP-712 signing. Implementations wrap a
// browser wallet bridge or a server-side key.
type WalletSigner interface {
	Address() string
	ChainID(ctx context.Context) (int64, error)
	SwitchChain(ctx context.Context, chainID int64) error
	// SendTransaction submits the transaction and blocks until it is mined.
	SendTransaction(ctx context.Context, tx *entities.EvmTransaction) (string, error)
	SignTypedData(ctx context.Context, typedData apitypes.TypedData) (string, error)
}

// ProgressFunc receives settlement progress transitions for UI feedback.
// A nil ProgressFunc is allowed.
type ProgressFunc func(entities.SettlementProgress)

// ClassifiedRoute is a gateway route annotated with its presentation type.
type ClassifiedRoute struct {
	*entities.PaymentRoute
	Type      entities.RouteType `json:"type"`
	IsDefault bool               `json:"isDefault"`
}

// PaymentUsecase drives route discovery and settlement submission.
type PaymentUsecase struct {
	invoiceRepo repositories.InvoiceRepository
	network     RequestNetworkGateway
}

// NewPaymentUsecase creates a new payment usecase
func NewPaymentUsecase(invoiceRepo repositories.InvoiceRepository, network RequestNetworkGateway) *PaymentUsecase {
	return &PaymentUsecase{
		invoiceRepo: invoiceRepo,
		network:     network,
	}
}

// GetRoutes lists the candidate routes for an invoice, classified for
// presentation. The first route returned by the gateway is the default.
func (u *PaymentUsecase) GetRoutes(ctx context.Context, paymentReference, wallet string) ([]*ClassifiedRoute, error) {
	invoice, err := u.invoiceRepo.GetByPaymentReference(ctx, paymentReference)
	if err != nil {
		return nil, err
	}

	routes, err := u.network.GetRoutes(ctx, paymentReference, wallet)
	if err != nil {
		return nil, err
	}

	classified := make([]*ClassifiedRoute, 0, len(routes))
	for i, route := range routes {
		classified = append(classified, &ClassifiedRoute{
			PaymentRoute: route,
			Type:         route.Classify(invoice.PaymentCurrency, invoice.IsCryptoToFiat),
			IsDefault:    i == 0,
		})
	}
	return classified, nil
}

// SettlementParams selects what to settle and over which route.
type SettlementParams struct {
	RequestID        string
	Chain            string
	Token            string
	PaymentDetailsID string
}

// Settle runs one settlement attempt: fetch the pay payload, put the wallet
// on the right chain, then follow whichever protocol the payload carries.
// Progress runs idle -> getting-transactions -> [approving] -> paying ->
// idle; any failure resets to idle and leaves no local partial state.
func (u *PaymentUsecase) Settle(ctx context.Context, params SettlementParams, signer WalletSigner, progress ProgressFunc) error {
	report := func(p entities.SettlementProgress) {
		if progress != nil {
			progress(p)
		}
	}
	defer report(entities.ProgressIdle)

	invoice, err := u.invoiceRepo.GetByRequestID(ctx, params.RequestID)
	if err != nil {
		return err
	}

	report(entities.ProgressGettingTransactions)
	payData, err := u.network.GetPayData(ctx, invoice.RequestID, gateway.PayDataQuery{
		Wallet:           signer.Address(),
		Chain:            params.Chain,
		Token:            params.Token,
		PaymentDetailsID: params.PaymentDetailsID,
	})
	if err != nil {
		return err
	}

	requiredChain, err := requiredChainID(invoice.PaymentCurrency, payData)
	if err != nil {
		return err
	}
	if err := ensureWalletChain(ctx, signer, requiredChain); err != nil {
		return err
	}

	if payData.IsIntentBased() {
		err = u.settleIntent(ctx, payData, signer, report)
	} else {
		err = settleTransactions(ctx, payData, signer, report)
	}
	if err != nil {
		return err
	}

	if err := u.invoiceRepo.UpdateStatusByRequestID(ctx, invoice.RequestID, entities.InvoiceStatusProcessing); err != nil {
		return err
	}

	logger.WithContext(ctx).Info("settlement submitted",
		zap.String("request_id", invoice.RequestID),
		zap.Bool("intent_based", payData.IsIntentBased()))
	return nil
}

// DirectPayParams describes an ad-hoc payment with no stored invoice.
type DirectPayParams struct {
	Amount          string
	Payee           string
	InvoiceCurrency string
	PaymentCurrency string
}

// PayDirect settles an ad-hoc payment. Only the on-chain transaction
// protocol applies; there is no invoice row to advance.
func (u *PaymentUsecase) PayDirect(ctx context.Context, params DirectPayParams, signer WalletSigner, progress ProgressFunc) error {
	report := func(p entities.SettlementProgress) {
		if progress != nil {
			progress(p)
		}
	}
	defer report(entities.ProgressIdle)

	report(entities.ProgressGettingTransactions)
	payData, err := u.DirectPayData(ctx, params, signer.Address())
	if err != nil {
		return err
	}

	requiredChain, err := requiredChainID(params.PaymentCurrency, payData)
	if err != nil {
		return err
	}
	if err := ensureWalletChain(ctx, signer, requiredChain); err != nil {
		return err
	}

	return settleTransactions(ctx, payData, signer, report)
}

// DirectPayData fetches the transactions for an ad-hoc payment so a browser
// wallet can execute them itself.
func (u *PaymentUsecase) DirectPayData(ctx context.Context, params DirectPayParams, wallet string) (*entities.PayData, error) {
	payData, err := u.network.Pay(ctx, gateway.DirectPayParams{
		Amount:          params.Amount,
		Payee:           params.Payee,
		InvoiceCurrency: params.InvoiceCurrency,
		PaymentCurrency: params.PaymentCurrency,
		Wallet:          wallet,
	})
	if err != nil {
		return nil, err
	}
	if payData.IsIntentBased() {
		return nil, domainerrors.GatewayError("direct payments cannot be intent based", nil)
	}
	return payData, nil
}

// SubmitSignedIntent forwards a browser-signed intent bundle to the gateway
// and marks the invoice as processing.
func (u *PaymentUsecase) SubmitSignedIntent(ctx context.Context, requestID, intentID string, payload *entities.SignedIntentPayload) error {
	invoice, err := u.invoiceRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return err
	}
	if err := u.network.SubmitPaymentIntent(ctx, intentID, payload); err != nil {
		return err
	}
	return u.invoiceRepo.UpdateStatusByRequestID(ctx, invoice.RequestID, entities.InvoiceStatusProcessing)
}

// settleTransactions runs the on-chain protocol: the optional approval
// transaction first, then the payment transaction(s).
func settleTransactions(ctx context.Context, payData *entities.PayData, signer WalletSigner, report ProgressFunc) error {
	txs := payData.Transactions
	start := 0

	if payData.Metadata != nil && payData.Metadata.NeedsApproval {
		idx := payData.Metadata.ApprovalTransactionIndex
		if idx < 0 || idx >= len(txs) {
			return domainerrors.GatewayError("approval transaction index out of range", nil)
		}
		report(entities.ProgressApproving)
		if _, err := signer.SendTransaction(ctx, &txs[idx]); err != nil {
			return fmt.Errorf("approval transaction failed: %w", err)
		}
		start = idx + 1
	}

	report(entities.ProgressPaying)
	for i := start; i < len(txs); i++ {
		if _, err := signer.SendTransaction(ctx, &txs[i]); err != nil {
			return fmt.Errorf("payment transaction failed: %w", err)
		}
	}
	return nil
}

// settleIntent runs the signed-intent protocol: approval by permit signature
// when the token supports ERC-2612, otherwise by on-chain transaction, then
// the intent signature and submission to the gateway.
func (u *PaymentUsecase) settleIntent(ctx context.Context, payData *entities.PayData, signer WalletSigner, report ProgressFunc) error {
	intent := payData.PaymentIntent
	if intent == nil {
		return domainerrors.GatewayError("intent payload misses the payment intent", nil)
	}

	payload := &entities.SignedIntentPayload{
		Nonce:    intent.Nonce,
		Deadline: intent.Deadline,
	}

	switch {
	case intent.SupportsPermit && intent.ApprovalPermit != nil:
		report(entities.ProgressApproving)
		permitSig, err := signer.SignTypedData(ctx, *intent.ApprovalPermit)
		if err != nil {
			return fmt.Errorf("permit signing failed: %w", err)
		}
		payload.PermitSignature = permitSig
		payload.PermitNonce = intent.PermitNonce
		payload.PermitDeadline = intent.PermitDeadline

	case intent.ApprovalTx != nil:
		report(entities.ProgressApproving)
		if _, err := signer.SendTransaction(ctx, intent.ApprovalTx); err != nil {
			return fmt.Errorf("approval transaction failed: %w", err)
		}
	}

	report(entities.ProgressPaying)
	intentSig, err := signer.SignTypedData(ctx, intent.TypedData)
	if err != nil {
		return fmt.Errorf("intent signing failed: %w", err)
	}
	payload.IntentSignature = intentSig

	return u.network.SubmitPaymentIntent(ctx, payData.PaymentIntentID, payload)
}

// requiredChainID resolves the chain the wallet must be on, preferring what
// the payload states over what the currency identifier implies.
func requiredChainID(paymentCurrency string, payData *entities.PayData) (int64, error) {
	if payData.PaymentIntent != nil && payData.PaymentIntent.RequiredChainID != 0 {
		return payData.PaymentIntent.RequiredChainID, nil
	}
	if payData.Metadata != nil && payData.Metadata.ChainID != 0 {
		return payData.Metadata.ChainID, nil
	}

	chain := entities.ChainOfCurrency(paymentCurrency)
	if chain == "" {
		return 0, domainerrors.NewAppError(400,
			fmt.Sprintf("cannot derive a chain from currency %q", paymentCurrency),
			domainerrors.ErrUnsupportedChain)
	}
	id, ok := entities.ChainToID[strings.ToUpper(chain)]
	if !ok {
		return 0, domainerrors.NewAppError(400,
			fmt.Sprintf("unsupported chain %q", chain),
			domainerrors.ErrUnsupportedChain)
	}
	return id, nil
}

// ensureWalletChain asks the wallet to switch networks when needed. A
// refused switch aborts the attempt.
func ensureWalletChain(ctx context.Context, signer WalletSigner, required int64) error {
	current, err := signer.ChainID(ctx)
	if err != nil {
		return err
	}
	if current == required {
		return nil
	}
	if err := signer.SwitchChain(ctx, required); err != nil {
		return fmt.Errorf("%w: need chain %d, wallet on %d: %v",
			domainerrors.ErrWrongWalletChain, required, current, err)
	}
	return nil
}
