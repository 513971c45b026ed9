package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TicketOpen     = "open"
	TicketAnswered = "answered"
	TicketClosed   = "closed"
)

type SupportTicket struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Subject   string    `gorm:"type:varchar(200);not null"`
	Message   string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'open'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Replies []TicketReply `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

type TicketReply struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TicketID  uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Message   string    `gorm:"type:text;not null"`
	FromStaff bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Attachment references an uploaded object in S3. The API only hands out
// presigned URLs; bytes never pass through this service.
type Attachment struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	WorkOrderID *uuid.UUID `gorm:"type:uuid;index"`
	TicketID    *uuid.UUID `gorm:"type:uuid;index"`
	Bucket      string     `gorm:"type:varchar(100);not null"`
	Key         string     `gorm:"type:varchar(512);not null"`
	ContentType string     `gorm:"type:varchar(100)"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}
