package service

import "accountd/internal/entity"

type RegisterInput struct {
	Email    string
	Password string
	Username string
	Role     string
}

type LoginInput struct {
	Email      string
	Password   string
	DeviceID   string
	DeviceName string
	IPAddress  *string
	UserAgent  *string
}

type LoginResult struct {
	AccessToken      string
	ExpiresIn        int64
	RefreshToken     string
	RefreshExpiresIn int64
}

// ProfileUpdateInput patches profile fields; nil means leave unchanged.
type ProfileUpdateInput struct {
	Name     *string
	Surname  *string
	Username *string
	Phone    *string
	Image    *string
}

type EmailList struct {
	PrimaryEmail     string
	AdditionalEmails []entity.UserEmail
}

type DashboardData struct {
	TotalUsers     int64
	TotalAdmins    int64
	UsersByRole    map[string]int64
	RecentActivity []entity.AuditLog
}
