package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/interfaces/http/middleware"
	"easy-invoice.backend/internal/interfaces/http/response"
	"easy-invoice.backend/pkg/logger"
)

// SignatureHeader carries the HMAC-SHA256 signature of the raw delivery body.
const SignatureHeader = "x-request-network-signature"

type WebhookService interface {
	ProcessEvent(ctx context.Context, event string, body json.RawMessage) error
	ProcessPaymentReference(ctx context.Context, paymentReference string) error
}

// WebhookHandler handles webhook deliveries from the payments gateway
type WebhookHandler struct {
	webhookUsecase WebhookService
	secret         []byte
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookUsecase WebhookService, secret string) *WebhookHandler {
	return &WebhookHandler{
		webhookUsecase: webhookUsecase,
		secret:         []byte(secret),
	}
}

// HandleEvent handles the primary gateway webhook
// POST /webhook
func (h *WebhookHandler) HandleEvent(c *gin.Context) {
	body, ok := h.verifiedBody(c)
	if !ok {
		return
	}

	// The delivery is one flat JSON object; the event name sits next to the
	// event's own fields, so the whole body travels to the usecase.
	var delivery struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(body, &delivery); err != nil {
		response.Error(c, domainerrors.BadRequest("malformed webhook body"))
		return
	}
	if delivery.Event == "" {
		response.Error(c, domainerrors.BadRequest("webhook event is required"))
		return
	}

	if err := h.webhookUsecase.ProcessEvent(c.Request.Context(), delivery.Event, json.RawMessage(body)); err != nil {
		middleware.CountWebhookEvent(delivery.Event, "error")
		response.Error(c, err)
		return
	}

	middleware.CountWebhookEvent(delivery.Event, "ok")
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// HandlePayment handles the secondary payment confirmation webhook
// POST /webhook/payment
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	body, ok := h.verifiedBody(c)
	if !ok {
		return
	}

	var delivery struct {
		PaymentReference string `json:"paymentReference"`
	}
	if err := json.Unmarshal(body, &delivery); err != nil {
		response.Error(c, domainerrors.BadRequest("malformed webhook body"))
		return
	}

	if err := h.webhookUsecase.ProcessPaymentReference(c.Request.Context(), delivery.PaymentReference); err != nil {
		if domainerrors.IsNotFound(err) {
			response.Error(c, domainerrors.NotFound("no invoice matches the payment reference"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// verifiedBody reads the raw body and checks its HMAC signature. A bad
// signature answers 401 before anything else happens.
func (h *WebhookHandler) verifiedBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("unreadable webhook body"))
		return nil, false
	}

	signature := c.GetHeader(SignatureHeader)
	if !verifySignature(h.secret, body, signature) {
		logger.WithContext(c.Request.Context()).Warn("webhook signature rejected",
			zap.String("path", c.Request.URL.Path))
		response.Error(c, domainerrors.NewAppError(http.StatusUnauthorized,
			"invalid webhook signature", domainerrors.ErrInvalidSignature))
		return nil, false
	}

	return body, true
}

func verifySignature(secret, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
