package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/infrastructure/gateway"
	"easy-invoice.backend/internal/interfaces/http/middleware"
	"easy-invoice.backend/internal/usecases"
	"easy-invoice.backend/pkg/utils"
)

type invoiceServiceStub struct {
	createFn  func(ctx context.Context, userID uuid.UUID, input *usecases.CreateInvoiceInput) (*entities.Invoice, error)
	listFn    func(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error)
	listToFn  func(ctx context.Context, email string, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error)
	getFn     func(ctx context.Context, userID, invoiceID uuid.UUID) (*entities.Invoice, error)
	requestFn func(ctx context.Context, requestID string) (*entities.Invoice, error)
	stopFn    func(ctx context.Context, userID, invoiceID uuid.UUID) error
	payDataFn func(ctx context.Context, paymentReference string, q gateway.PayDataQuery) (*entities.PayData, error)
}

func (s invoiceServiceStub) Create(ctx context.Context, userID uuid.UUID, input *usecases.CreateInvoiceInput) (*entities.Invoice, error) {
	return s.createFn(ctx, userID, input)
}
func (s invoiceServiceStub) ListOwn(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error) {
	return s.listFn(ctx, userID, page, limit)
}
func (s invoiceServiceStub) ListInvoicedToMe(ctx context.Context, email string, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error) {
	return s.listToFn(ctx, email, page, limit)
}
func (s invoiceServiceStub) GetOwn(ctx context.Context, userID, invoiceID uuid.UUID) (*entities.Invoice, error) {
	return s.getFn(ctx, userID, invoiceID)
}
func (s invoiceServiceStub) GetByRequestID(ctx context.Context, requestID string) (*entities.Invoice, error) {
	return s.requestFn(ctx, requestID)
}
func (s invoiceServiceStub) StopRecurrence(ctx context.Context, userID, invoiceID uuid.UUID) error {
	return s.stopFn(ctx, userID, invoiceID)
}
func (s invoiceServiceStub) GetPayDataByPaymentReference(ctx context.Context, paymentReference string, q gateway.PayDataQuery) (*entities.PayData, error) {
	return s.payDataFn(ctx, paymentReference, q)
}

const validCreateInvoiceBody = `{
	"clientName": "Acme Corp",
	"clientEmail": "billing@acme.test",
	"items": [{"description": "Consulting", "quantity": 10, "price": 150}],
	"issuedDate": "2026-07-01T00:00:00Z",
	"dueDate": "2026-07-15T00:00:00Z",
	"invoiceCurrency": "USD",
	"paymentCurrency": "FAU-sepolia",
	"payee": "0x1111111111111111111111111111111111111111"
}`

func invoiceTestRouter(svc InvoiceService, user *entities.User) *gin.Engine {
	r := gin.New()
	h := NewInvoiceHandler(svc)
	withUser := func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.UserKey, user)
			c.Set(middleware.UserIDKey, user.ID)
			c.Set(middleware.UserEmailKey, user.Email)
		}
		c.Next()
	}
	r.POST("/invoices", withUser, h.CreateInvoice)
	r.GET("/invoices", withUser, h.ListInvoices)
	r.GET("/invoices/invoiced-to-me", withUser, h.ListInvoicedToMe)
	r.GET("/invoices/:id", withUser, h.GetInvoice)
	r.POST("/invoices/:id/stop-recurrence", withUser, h.StopRecurrence)
	r.GET("/requests/:requestId", h.GetRequest)
	r.GET("/pay/:paymentReference", h.GetPayData)
	return r
}

func TestInvoiceHandler_CreateInvoice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &entities.User{ID: uuid.New(), Name: "Alice Doe", Email: "alice@example.com"}

	t.Run("creator defaults from session", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			createFn: func(_ context.Context, userID uuid.UUID, input *usecases.CreateInvoiceInput) (*entities.Invoice, error) {
				if userID != user.ID {
					t.Fatalf("unexpected user id: %s", userID)
				}
				if input.CreatorName != "Alice Doe" || input.CreatorEmail != "alice@example.com" {
					t.Fatalf("creator not defaulted: %s %s", input.CreatorName, input.CreatorEmail)
				}
				return &entities.Invoice{ID: uuid.New(), UserID: userID}, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewBufferString(validCreateInvoiceBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("missing client email", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			createFn: func(context.Context, uuid.UUID, *usecases.CreateInvoiceInput) (*entities.Invoice, error) {
				t.Fatal("should not be called")
				return nil, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewBufferString(`{"clientName":"Acme Corp"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			createFn: func(context.Context, uuid.UUID, *usecases.CreateInvoiceInput) (*entities.Invoice, error) {
				t.Fatal("should not be called")
				return nil, nil
			},
		}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewBufferString(validCreateInvoiceBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestInvoiceHandler_ListInvoices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &entities.User{ID: uuid.New(), Email: "alice@example.com"}

	t.Run("pagination defaults", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			listFn: func(_ context.Context, userID uuid.UUID, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error) {
				if page != 1 || limit != 0 {
					t.Fatalf("unexpected pagination: page=%d limit=%d", page, limit)
				}
				return []*entities.Invoice{{ID: uuid.New(), UserID: userID}}, utils.PaginationMeta{TotalCount: 1, Page: 1}, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
		if !bytes.Contains(w.Body.Bytes(), []byte(`"meta"`)) {
			t.Fatalf("expected meta payload, body=%s", w.Body.String())
		}
	})

	t.Run("explicit pagination", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			listFn: func(_ context.Context, _ uuid.UUID, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error) {
				if page != 3 || limit != 20 {
					t.Fatalf("unexpected pagination: page=%d limit=%d", page, limit)
				}
				return nil, utils.PaginationMeta{Page: 3, Limit: 20}, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/invoices?page=3&limit=20", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("invoiced to me uses email", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			listToFn: func(_ context.Context, email string, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error) {
				if email != "alice@example.com" {
					t.Fatalf("unexpected email: %s", email)
				}
				return nil, utils.PaginationMeta{}, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/invoices/invoiced-to-me", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestInvoiceHandler_GetInvoice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &entities.User{ID: uuid.New(), Email: "alice@example.com"}
	invoiceID := uuid.New()

	t.Run("success", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			getFn: func(_ context.Context, userID, id uuid.UUID) (*entities.Invoice, error) {
				if id != invoiceID || userID != user.ID {
					t.Fatalf("unexpected lookup: %s %s", userID, id)
				}
				return &entities.Invoice{ID: id, UserID: userID}, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/invoices/"+invoiceID.String(), nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			getFn: func(context.Context, uuid.UUID, uuid.UUID) (*entities.Invoice, error) {
				t.Fatal("should not be called")
				return nil, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/invoices/not-a-uuid", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("foreign invoice", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			getFn: func(context.Context, uuid.UUID, uuid.UUID) (*entities.Invoice, error) {
				return nil, domainerrors.NotFound("invoice not found")
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/invoices/"+invoiceID.String(), nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestInvoiceHandler_StopRecurrence(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &entities.User{ID: uuid.New(), Email: "alice@example.com"}
	invoiceID := uuid.New()

	t.Run("success", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			stopFn: func(_ context.Context, userID, id uuid.UUID) error {
				if id != invoiceID {
					t.Fatalf("unexpected invoice id: %s", id)
				}
				return nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices/"+invoiceID.String()+"/stop-recurrence", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("already stopped", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			stopFn: func(context.Context, uuid.UUID, uuid.UUID) error {
				return domainerrors.Conflict("recurrence already stopped")
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/invoices/"+invoiceID.String()+"/stop-recurrence", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestInvoiceHandler_PublicEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("get request", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			requestFn: func(_ context.Context, requestID string) (*entities.Invoice, error) {
				if requestID != "req-1" {
					t.Fatalf("unexpected request id: %s", requestID)
				}
				return &entities.Invoice{ID: uuid.New()}, nil
			},
		}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/requests/req-1", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("pay data forwards query hints", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			payDataFn: func(_ context.Context, paymentReference string, q gateway.PayDataQuery) (*entities.PayData, error) {
				if paymentReference != "0xref" {
					t.Fatalf("unexpected reference: %s", paymentReference)
				}
				if q.Wallet != "0xwallet" || q.Chain != "base" || q.Token != "USDC" {
					t.Fatalf("unexpected query: %+v", q)
				}
				return &entities.PayData{}, nil
			},
		}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/pay/0xref?wallet=0xwallet&chain=base&token=USDC", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("pay data requires wallet", func(t *testing.T) {
		r := invoiceTestRouter(invoiceServiceStub{
			payDataFn: func(context.Context, string, gateway.PayDataQuery) (*entities.PayData, error) {
				t.Fatal("should not be called")
				return nil, nil
			},
		}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/pay/0xref", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	})
}
