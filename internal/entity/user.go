package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser       UserRole = "user"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperAdmin UserRole = "super_admin"
)

// IsAdmin reports whether the role grants access to admin endpoints.
func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin || r == UserRoleSuperAdmin
}

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin, UserRoleSuperAdmin:
		return true
	}
	return false
}

// User is the account row. Email always mirrors the address of the primary
// UserEmail row once one has been promoted; until then it is the address the
// account registered with.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	Role         UserRole  `gorm:"type:varchar(20);default:'user';not null"`

	Name    *string `gorm:"type:varchar(100)"`
	Surname *string `gorm:"type:varchar(100)"`
	Phone   *string `gorm:"type:varchar(20)"`
	Image   *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Emails   []UserEmail
	Sessions []Session
}
