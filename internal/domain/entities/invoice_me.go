package entities

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceMeLink is a shareable link that lets an unauthenticated third party
// create an invoice addressed to the link owner.
type InvoiceMeLink struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`

	// Owner identity, when loaded for the public resolve view
	OwnerName  string `json:"ownerName,omitempty"`
	OwnerEmail string `json:"ownerEmail,omitempty"`
}
