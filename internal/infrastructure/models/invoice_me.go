package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceMeLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Label     string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
}

func (InvoiceMeLink) TableName() string {
	return "easyinvoice_invoice_me_links"
}
