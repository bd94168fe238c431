package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmailVerificationToken proves control of an address. It is bound to the
// email string rather than a user id, and only the SHA-256 of the raw token
// is stored. Rows are never updated: a token is deleted when consumed,
// superseded by a reissue, or found expired on first access.
type EmailVerificationToken struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Email     string `gorm:"type:varchar(255);not null;index"`
	TokenHash string `gorm:"type:text;not null;uniqueIndex"`

	ExpiresAt time.Time

	CreatedAt time.Time
}
