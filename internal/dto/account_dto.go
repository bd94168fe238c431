package dto

import (
	"time"

	"accountd/internal/entity"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"required,min=1"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin super_admin"`
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	DeviceID   string `json:"device_id" validate:"required"`
	DeviceName string `json:"device_name" validate:"omitempty"`
}

type LoginResponse struct {
	AccessToken      string `json:"access_token,omitempty"`
	ExpiresIn        int64  `json:"expires_in,omitempty"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	RefreshExpiresIn int64  `json:"refresh_expires_in,omitempty"`
}

type ChangeUsernameRequest struct {
	Username string `json:"username" validate:"required,min=3"`
}

// UpdateProfileRequest patches profile fields; absent fields stay untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Surname  *string `json:"surname" validate:"omitempty,max=100"`
	Username *string `json:"username" validate:"omitempty,min=3"`
	Phone    *string `json:"phone" validate:"omitempty,e164"`
	Image    *string `json:"image" validate:"omitempty,url"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Name      *string   `json:"name,omitempty"`
	Surname   *string   `json:"surname,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func UserResponseFromEntity(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		Role:      string(user.Role),
		Name:      user.Name,
		Surname:   user.Surname,
		Phone:     user.Phone,
		Image:     user.Image,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

type AdminActivityEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type AdminDashboardResponse struct {
	TotalUsers     int64                `json:"totalUsers"`
	TotalAdmins    int64                `json:"totalAdmins"`
	UsersByRole    map[string]int64     `json:"usersByRole"`
	RecentActivity []AdminActivityEntry `json:"recentActivity"`
}
