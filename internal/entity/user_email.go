package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserEmail is an additional address attached to an account. At most one row
// per user carries IsPrimary, and only a verified row may be promoted.
// Addresses are unique across this table; uniqueness against User.Email is
// checked at the service layer since the two live in separate tables.
type UserEmail struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	Email     string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Verified  bool   `gorm:"default:false;not null"`
	IsPrimary bool   `gorm:"default:false;not null"`

	CreatedAt time.Time
}
