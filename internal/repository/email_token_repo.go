package repository

import (
	"context"
	"errors"

	"accountd/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmailTokenRepository interface {
	Create(ctx context.Context, token *entity.EmailVerificationToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.EmailVerificationToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByEmail(ctx context.Context, email string) error
}

type emailTokenRepository struct {
	db *gorm.DB
}

func NewEmailTokenRepository(db *gorm.DB) EmailTokenRepository {
	return &emailTokenRepository{db: db}
}

func (r *emailTokenRepository) Create(ctx context.Context, t *entity.EmailVerificationToken) error {
	return translateError(r.db.WithContext(ctx).Create(t).Error)
}

func (r *emailTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.EmailVerificationToken, error) {
	var token entity.EmailVerificationToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&token).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &token, err
}

func (r *emailTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entity.EmailVerificationToken{}).
		Error
}

func (r *emailTokenRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&entity.EmailVerificationToken{}).
		Error
}
