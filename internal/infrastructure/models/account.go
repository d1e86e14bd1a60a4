package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the gorm model backing the accounts table. Soft deletion
// is a domain flag here, not gorm's DeletedAt convention: deleted rows
// stay visible to the application until an external retention job
// purges them. CreatedAt is write-once (`<-:create`).
type Account struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email            string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name             string    `gorm:"type:varchar(100)"`
	PasswordHash     string    `gorm:"type:varchar(255);not null"`
	Role             string    `gorm:"type:varchar(20);not null;default:'USER'"`
	IsEnabled        bool      `gorm:"not null;default:true"`
	IsVerified       bool      `gorm:"not null;default:false"`
	IsDeleted        bool      `gorm:"not null;default:false"`
	PendingKind      *string   `gorm:"type:varchar(32)"`
	PendingCode      *string   `gorm:"type:varchar(16)"`
	PendingExpiresAt *time.Time
	CreatedAt        time.Time `gorm:"<-:create"`
	UpdatedAt        time.Time
	LastLoginAt      *time.Time
	DeletedAt        *time.Time
}

// TableName overrides the table name
func (Account) TableName() string {
	return "accounts"
}
