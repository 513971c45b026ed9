package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Work order statuses, in rough lifecycle order.
const (
	WorkOrderReceived         = "received"
	WorkOrderDiagnosing       = "diagnosing"
	WorkOrderAwaitingApproval = "awaiting_approval"
	WorkOrderRepairing        = "repairing"
	WorkOrderReady            = "ready"
	WorkOrderCollected        = "collected"
	WorkOrderCancelled        = "cancelled"
)

// Work order payment statuses. These fields are written only by the payment
// reconciliation flow; no handler mutates them directly.
const (
	WorkOrderUnpaid         = "unpaid"
	WorkOrderPaid           = "paid"
	WorkOrderRefundAdjusted = "refund_adjusted"
)

type WorkOrder struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string     `gorm:"uniqueIndex;not null"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	TechnicianID  *uuid.UUID `gorm:"type:uuid;index"`
	DeviceType    string     `gorm:"type:varchar(50);not null"`
	Brand         string     `gorm:"type:varchar(50);not null"`
	Model         string     `gorm:"type:varchar(100)"`
	IssueDetails  string     `gorm:"type:text;not null"`
	ServiceType   string     `gorm:"type:varchar(50);not null"`
	Status        string     `gorm:"type:varchar(30);not null;default:'received'"`
	PaymentStatus string     `gorm:"type:varchar(30);not null;default:'unpaid'"`
	QuoteAmount   *int64
	CompletedAt   *time.Time
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}
