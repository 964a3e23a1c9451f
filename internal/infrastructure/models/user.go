package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	GoogleID        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email           string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name            string    `gorm:"type:varchar(255);not null"`
	KYCStatus       string    `gorm:"type:varchar(50);not null;default:'not_started'"`
	AgreementStatus string    `gorm:"type:varchar(50);not null;default:'not_started'"`
	IsCompliant     bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "easyinvoice_users"
}

type Session struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (Session) TableName() string {
	return "easyinvoice_sessions"
}
