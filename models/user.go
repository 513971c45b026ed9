package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles recognized by the authorization middleware.
const (
	RoleCustomer   = "customer"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

// User model
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"unique;not null"`
	Password  string    `gorm:"not null"`
	Name      string    `gorm:"not null"`
	Phone     string    `gorm:"size:20"`
	Role      string    `gorm:"type:varchar(50);default:'customer'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// RefreshToken stores issued refresh tokens for rotation and revocation
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TokenID   string    `gorm:"unique;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Revoked   bool      `gorm:"default:false"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Migrate runs auto migration for every model in the application.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&WorkOrder{},
		&Payment{},
		&RefundRequest{},
		&Product{},
		&SupportTicket{},
		&TicketReply{},
		&Attachment{},
	)
}
