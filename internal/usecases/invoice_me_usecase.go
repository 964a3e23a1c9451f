package usecases

import (
	"context"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/domain/repositories"
)

// InvoiceMeUsecase manages shareable links through which third parties
// invoice the link owner.
type InvoiceMeUsecase struct {
	linkRepo repositories.InvoiceMeRepository
	invoices *InvoiceUsecase
}

// NewInvoiceMeUsecase creates a new invoice-me usecase
func NewInvoiceMeUsecase(linkRepo repositories.InvoiceMeRepository, invoices *InvoiceUsecase) *InvoiceMeUsecase {
	return &InvoiceMeUsecase{
		linkRepo: linkRepo,
		invoices: invoices,
	}
}

// CreateLink mints a new shareable link.
func (u *InvoiceMeUsecase) CreateLink(ctx context.Context, userID uuid.UUID, label string) (*entities.InvoiceMeLink, error) {
	if label == "" {
		return nil, domainerrors.BadRequest("label is required")
	}
	link := &entities.InvoiceMeLink{
		ID:     uuid.New(),
		UserID: userID,
		Label:  label,
	}
	if err := u.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// ListLinks returns the user's links.
func (u *InvoiceMeUsecase) ListLinks(ctx context.Context, userID uuid.UUID) ([]*entities.InvoiceMeLink, error) {
	return u.linkRepo.ListByUserID(ctx, userID)
}

// DeleteLink removes one of the user's links.
func (u *InvoiceMeUsecase) DeleteLink(ctx context.Context, id, userID uuid.UUID) error {
	return u.linkRepo.Delete(ctx, id, userID)
}

// ResolveLink is the public view of a link: who gets invoiced through it.
func (u *InvoiceMeUsecase) ResolveLink(ctx context.Context, id uuid.UUID) (*entities.InvoiceMeLink, error) {
	return u.linkRepo.GetByID(ctx, id)
}

// CreateInvoiceForLink lets an unauthenticated visitor invoice the link
// owner. The invoice lands in the owner's account, addressed to them, with
// the visitor as creator and payee.
func (u *InvoiceMeUsecase) CreateInvoiceForLink(ctx context.Context, linkID uuid.UUID, input *CreateInvoiceInput) (*entities.Invoice, error) {
	link, err := u.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	input.ClientName = link.OwnerName
	input.ClientEmail = link.OwnerEmail
	input.InvoicedTo = null.StringFrom(link.OwnerEmail)
	// Link-created invoices never carry recurrence or offramp settings.
	input.IsRecurring = false
	input.IsCryptoToFiat = false
	input.PaymentDetailsID = null.String{}

	return u.invoices.Create(ctx, link.UserID, input)
}
