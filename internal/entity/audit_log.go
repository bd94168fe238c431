package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	UserRegistered  AuditAction = "user_registered"
	LoginSuccess    AuditAction = "login_success"
	LoginFailed     AuditAction = "login_failed"
	Logout          AuditAction = "logout"
	UsernameChanged AuditAction = "username_changed"
	EmailAdded      AuditAction = "email_added"
	EmailVerified   AuditAction = "email_verified"
	EmailRemoved    AuditAction = "email_removed"
	PrimaryChanged  AuditAction = "primary_email_changed"
)

// AuditLog records account activity. Recent entries back the admin
// dashboard's activity feed.
type AuditLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID *uuid.UUID `gorm:"type:uuid;index"`
	User   *User      `gorm:"constraint:OnDelete:SET NULL"`

	IPAddress *string     `gorm:"type:varchar(45)"`
	Action    AuditAction `gorm:"type:varchar(40);not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}
