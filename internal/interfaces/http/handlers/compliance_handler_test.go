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
)

type complianceServiceStub struct {
	submitFn        func(ctx context.Context, user *entities.User, profile *gateway.PayerProfile) error
	statusFn        func(ctx context.Context, email string) (*entities.ComplianceStatus, error)
	agreementFn     func(ctx context.Context, email string) error
	createDetailsFn func(ctx context.Context, userID uuid.UUID, details *entities.PaymentDetails) (*entities.PaymentDetails, error)
	getDetailsFn    func(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentDetails, error)
	allowFn         func(ctx context.Context, ownerID, paymentDetailsID uuid.UUID, payerEmail string) (*entities.PaymentDetailsPayer, error)
}

func (s complianceServiceStub) SubmitComplianceInfo(ctx context.Context, user *entities.User, profile *gateway.PayerProfile) error {
	return s.submitFn(ctx, user, profile)
}
func (s complianceServiceStub) GetComplianceStatus(ctx context.Context, email string) (*entities.ComplianceStatus, error) {
	return s.statusFn(ctx, email)
}
func (s complianceServiceStub) UpdateAgreementStatus(ctx context.Context, email string) error {
	return s.agreementFn(ctx, email)
}
func (s complianceServiceStub) CreatePaymentDetails(ctx context.Context, userID uuid.UUID, details *entities.PaymentDetails) (*entities.PaymentDetails, error) {
	return s.createDetailsFn(ctx, userID, details)
}
func (s complianceServiceStub) GetPaymentDetails(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentDetails, error) {
	return s.getDetailsFn(ctx, userID)
}
func (s complianceServiceStub) AllowPaymentDetails(ctx context.Context, ownerID, paymentDetailsID uuid.UUID, payerEmail string) (*entities.PaymentDetailsPayer, error) {
	return s.allowFn(ctx, ownerID, paymentDetailsID, payerEmail)
}

func complianceTestRouter(svc ComplianceService, user *entities.User) *gin.Engine {
	r := gin.New()
	h := NewComplianceHandler(svc)
	withUser := func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.UserKey, user)
			c.Set(middleware.UserIDKey, user.ID)
			c.Set(middleware.UserEmailKey, user.Email)
		}
		c.Next()
	}
	r.POST("/compliance", withUser, h.SubmitComplianceInfo)
	r.GET("/compliance/status", withUser, h.GetComplianceStatus)
	r.PATCH("/compliance/agreement", withUser, h.UpdateAgreementStatus)
	r.POST("/payment-details", withUser, h.CreatePaymentDetails)
	r.GET("/payment-details", withUser, h.GetPaymentDetails)
	r.POST("/payment-details/:id/allow", withUser, h.AllowPaymentDetails)
	return r
}

const validComplianceBody = `{
	"firstName": "Alice",
	"lastName": "Doe",
	"beneficiaryType": "individual",
	"addressLine1": "1 Main St",
	"city": "Lisbon",
	"postalCode": "1000-001",
	"country": "PT"
}`

func TestComplianceHandler_SubmitComplianceInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &entities.User{ID: uuid.New(), Email: "alice@example.com"}

	t.Run("success", func(t *testing.T) {
		r := complianceTestRouter(complianceServiceStub{
			submitFn: func(_ context.Context, gotUser *entities.User, profile *gateway.PayerProfile) error {
				if gotUser.ID != user.ID {
					t.Fatalf("unexpected user: %s", gotUser.ID)
				}
				if profile.FirstName != "Alice" || profile.Country != "PT" {
					t.Fatalf("unexpected profile: %+v", profile)
				}
				return nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/compliance", bytes.NewBufferString(validComplianceBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		r := complianceTestRouter(complianceServiceStub{
			submitFn: func(context.Context, *entities.User, *gateway.PayerProfile) error {
				t.Fatal("should not be called")
				return nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/compliance", bytes.NewBufferString(`{"firstName":"Alice"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		r := complianceTestRouter(complianceServiceStub{
			submitFn: func(context.Context, *entities.User, *gateway.PayerProfile) error {
				t.Fatal("should not be called")
				return nil
			},
		}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/compliance", bytes.NewBufferString(validComplianceBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestComplianceHandler_GetComplianceStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &entities.User{ID: uuid.New(), Email: "alice@example.com"}

	r := complianceTestRouter(complianceServiceStub{
		statusFn: func(_ context.Context, email string) (*entities.ComplianceStatus, error) {
			if email != "alice@example.com" {
				t.Fatalf("unexpected email: %s", email)
			}
			return &entities.ComplianceStatus{
				KYCStatus:       entities.KYCApproved,
				AgreementStatus: entities.AgreementCompleted,
				IsCompliant:     true,
			}, nil
		},
	}, user)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/compliance/status", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"isCompliant":true`)) {
		t.Fatalf("expected compliant status, body=%s", w.Body.String())
	}
}

func TestComplianceHandler_UpdateAgreementStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &entities.User{ID: uuid.New(), Email: "alice@example.com"}

	t.Run("success", func(t *testing.T) {
		called := false
		r := complianceTestRouter(complianceServiceStub{
			agreementFn: func(_ context.Context, email string) error {
				called = true
				return nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/compliance/agreement", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
		}
		if !called {
			t.Fatal("expected agreement update to be called")
		}
	})

	t.Run("unknown payer", func(t *testing.T) {
		r := complianceTestRouter(complianceServiceStub{
			agreementFn: func(context.Context, string) error {
				return domainerrors.NotFound("payer not registered")
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/compliance/agreement", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestComplianceHandler_CreatePaymentDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &entities.User{ID: uuid.New(), Email: "alice@example.com"}

	t.Run("success", func(t *testing.T) {
		r := complianceTestRouter(complianceServiceStub{
			createDetailsFn: func(_ context.Context, userID uuid.UUID, details *entities.PaymentDetails) (*entities.PaymentDetails, error) {
				if userID != user.ID {
					t.Fatalf("unexpected user id: %s", userID)
				}
				if details.BankName != "Test Bank" || !details.IBAN.Valid {
					t.Fatalf("unexpected details: %+v", details)
				}
				details.ID = uuid.New()
				return details, nil
			},
		}, user)

		body := `{
			"bankName": "Test Bank",
			"accountName": "Alice Doe",
			"beneficiaryType": "individual",
			"iban": "PT50000201231234567890154",
			"addressLine1": "1 Main St",
			"city": "Lisbon",
			"postalCode": "1000-001",
			"country": "PT",
			"currency": "EUR"
		}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payment-details", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("missing bank name", func(t *testing.T) {
		r := complianceTestRouter(complianceServiceStub{
			createDetailsFn: func(context.Context, uuid.UUID, *entities.PaymentDetails) (*entities.PaymentDetails, error) {
				t.Fatal("should not be called")
				return nil, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payment-details", bytes.NewBufferString(`{"accountName":"Alice Doe"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	})
}

func TestComplianceHandler_AllowPaymentDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &entities.User{ID: uuid.New(), Email: "alice@example.com"}
	detailsID := uuid.New()

	t.Run("success", func(t *testing.T) {
		r := complianceTestRouter(complianceServiceStub{
			allowFn: func(_ context.Context, ownerID, paymentDetailsID uuid.UUID, payerEmail string) (*entities.PaymentDetailsPayer, error) {
				if ownerID != user.ID || paymentDetailsID != detailsID {
					t.Fatalf("unexpected args: %s %s", ownerID, paymentDetailsID)
				}
				if payerEmail != "payer@example.com" {
					t.Fatalf("unexpected payer email: %s", payerEmail)
				}
				return &entities.PaymentDetailsPayer{ID: uuid.New(), PaymentDetailsID: detailsID}, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payment-details/"+detailsID.String()+"/allow",
			bytes.NewBufferString(`{"payerEmail":"payer@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		r := complianceTestRouter(complianceServiceStub{
			allowFn: func(context.Context, uuid.UUID, uuid.UUID, string) (*entities.PaymentDetailsPayer, error) {
				t.Fatal("should not be called")
				return nil, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payment-details/"+detailsID.String()+"/allow",
			bytes.NewBufferString(`{"payerEmail":"not-an-email"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("non-compliant payer", func(t *testing.T) {
		r := complianceTestRouter(complianceServiceStub{
			allowFn: func(context.Context, uuid.UUID, uuid.UUID, string) (*entities.PaymentDetailsPayer, error) {
				return nil, domainerrors.Forbidden("payer has not completed compliance")
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payment-details/"+detailsID.String()+"/allow",
			bytes.NewBufferString(`{"payerEmail":"payer@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid details id", func(t *testing.T) {
		r := complianceTestRouter(complianceServiceStub{
			allowFn: func(context.Context, uuid.UUID, uuid.UUID, string) (*entities.PaymentDetailsPayer, error) {
				t.Fatal("should not be called")
				return nil, nil
			},
		}, user)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payment-details/not-a-uuid/allow",
			bytes.NewBufferString(`{"payerEmail":"payer@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	})
}
