package dto

import (
	"time"

	"accountd/internal/entity"
)

type AddEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SetPrimaryRequest struct {
	IsPrimary *bool `json:"isPrimary" validate:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UserEmailResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"created_at"`
}

func UserEmailResponseFromEntity(email *entity.UserEmail) UserEmailResponse {
	return UserEmailResponse{
		ID:        email.ID.String(),
		Email:     email.Email,
		Verified:  email.Verified,
		IsPrimary: email.IsPrimary,
		CreatedAt: email.CreatedAt,
	}
}

type EmailListResponse struct {
	PrimaryEmail     string              `json:"primaryEmail"`
	AdditionalEmails []UserEmailResponse `json:"additionalEmails"`
}

func EmailListResponseFromEntities(primary string, emails []entity.UserEmail) EmailListResponse {
	additional := make([]UserEmailResponse, 0, len(emails))
	for i := range emails {
		additional = append(additional, UserEmailResponseFromEntity(&emails[i]))
	}
	return EmailListResponse{PrimaryEmail: primary, AdditionalEmails: additional}
}
