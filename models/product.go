package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string         `gorm:"type:varchar(200);not null"`
	Description string         `gorm:"type:text"`
	Category    string         `gorm:"type:varchar(50);index;not null"`
	Price       int64          `gorm:"not null"` // minor units
	Stock       int            `gorm:"not null;default:0"`
	ImageURL    *string        `gorm:"type:varchar(1024)"`
	Active      bool           `gorm:"default:true"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}
