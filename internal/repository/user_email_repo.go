package repository

import (
	"context"
	"database/sql"
	"errors"

	"accountd/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserEmailRepository interface {
	Create(ctx context.Context, email *entity.UserEmail) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.UserEmail, error)
	FindByEmail(ctx context.Context, email string) (*entity.UserEmail, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserEmail, error)
	MarkVerified(ctx context.Context, email string) error
	SetPrimaryFlag(ctx context.Context, id uuid.UUID, isPrimary bool) error
	Promote(ctx context.Context, userID, id uuid.UUID, email string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userEmailRepository struct {
	db *gorm.DB
}

func NewUserEmailRepository(db *gorm.DB) UserEmailRepository {
	return &userEmailRepository{db: db}
}

func (r *userEmailRepository) Create(ctx context.Context, email *entity.UserEmail) error {
	return translateError(r.db.WithContext(ctx).Create(email).Error)
}

func (r *userEmailRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.UserEmail, error) {
	var email entity.UserEmail
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&email).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &email, err
}

func (r *userEmailRepository) FindByEmail(ctx context.Context, email string) (*entity.UserEmail, error) {
	var row entity.UserEmail
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &row, err
}

func (r *userEmailRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.UserEmail, error) {
	var emails []entity.UserEmail
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *userEmailRepository) MarkVerified(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Model(&entity.UserEmail{}).
		Where("email = ?", email).
		Update("verified", true).
		Error
}

func (r *userEmailRepository) SetPrimaryFlag(ctx context.Context, id uuid.UUID, isPrimary bool) error {
	return r.db.WithContext(ctx).
		Model(&entity.UserEmail{}).
		Where("id = ?", id).
		Update("is_primary", isPrimary).
		Error
}

// Promote makes the given row the user's single primary address and mirrors
// its email into users.email. The three writes run in one serializable
// transaction so a reader never observes zero or two primary rows, and
// concurrent promotions for the same user serialize instead of interleaving.
func (r *userEmailRepository) Promote(ctx context.Context, userID, id uuid.UUID, email string) error {
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.UserEmail{}).
			Where("user_id = ? AND is_primary = true", userID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.UserEmail{}).
			Where("id = ?", id).
			Update("is_primary", true).Error; err != nil {
			return err
		}
		return tx.Model(&entity.User{}).
			Where("id = ?", userID).
			Update("email", email).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	return translateError(txErr)
}

func (r *userEmailRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entity.UserEmail{}).
		Error
}
