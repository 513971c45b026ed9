package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment statuses. Transitions between them are owned by the payments
// package state machine; nothing else writes the status column.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

type Payment struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Reference        string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_payments_provider_reference"`
	Provider         string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_payments_provider_reference"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	WorkOrderID      *uuid.UUID `gorm:"type:uuid;index"`
	Amount           int64      `gorm:"not null"` // minor units
	Currency         string     `gorm:"type:varchar(10);not null"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pending'"`
	RefundedAmount   int64      `gorm:"not null;default:0"`
	AuthorizationURL *string    `gorm:"type:varchar(1024)"`
	ProviderPayload  *string    `gorm:"type:jsonb"` // last verified webhook body, for audit
	PaidAt           *time.Time
	FailedAt         *time.Time
	RefundedAt       *time.Time
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// RefundRequest records an administrator-initiated refund. The linked payment
// stays paid until the provider's refund webhook lands.
type RefundRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null;index"`
	AdminID   uuid.UUID `gorm:"type:uuid;not null"`
	Amount    int64     `gorm:"not null"`
	Reason    string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
