package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"accountd/internal/entity"
	"accountd/internal/repository"
	"accountd/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EmailService owns the additional-email lifecycle: registration, token
// issue/consume, promotion to primary, and removal.
type EmailService struct {
	users  repository.UserRepository
	emails repository.UserEmailRepository
	tokens repository.EmailTokenRepository
	audit  repository.AuditLogRepository

	emailSender EmailSender
	clock       Clock
	config      Config
}

func NewEmailService(
	users repository.UserRepository,
	emails repository.UserEmailRepository,
	tokens repository.EmailTokenRepository,
	audit repository.AuditLogRepository,
	emailSender EmailSender,
	clock Clock,
	config Config,
) *EmailService {
	return &EmailService{
		users:       users,
		emails:      emails,
		tokens:      tokens,
		audit:       audit,
		emailSender: emailSender,
		clock:       clock,
		config:      config,
	}
}

func (s *EmailService) List(ctx context.Context, userID uuid.UUID) (*EmailList, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	emails, err := s.emails.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &EmailList{PrimaryEmail: user.Email, AdditionalEmails: emails}, nil
}

// Add attaches a new unverified address to the account and issues a
// verification token for it. The address must be unused in both the account
// table and the additional-email table.
func (s *EmailService) Add(ctx context.Context, userID uuid.UUID, email string) (*entity.UserEmail, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidInput
	}
	if !utils.ValidEmailFormat(email) {
		return nil, ErrInvalidEmail
	}

	existingUser, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrEmailInUse
	}

	existingEmail, err := s.emails.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingEmail != nil {
		return nil, ErrEmailAlreadyAdded
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	row := &entity.UserEmail{
		UserID:    userID,
		Email:     email,
		Verified:  false,
		IsPrimary: false,
	}
	if err := s.emails.Create(ctx, row); err != nil {
		// Two adds racing past the pre-check land here via the unique index.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailAlreadyAdded
		}
		return nil, err
	}

	if err := s.issue(ctx, email); err != nil {
		return nil, err
	}

	s.log(ctx, &userID, entity.EmailAdded, map[string]any{"email": email})
	return row, nil
}

// Remove deletes an owned non-primary address along with any verification
// tokens still outstanding for it. The primary address can never be removed;
// promote another one first.
func (s *EmailService) Remove(ctx context.Context, userID, emailID uuid.UUID) error {
	row, err := s.emails.FindByID(ctx, userID, emailID)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrEmailNotFound
	}
	if row.IsPrimary {
		return ErrPrimaryEmail
	}

	if err := s.emails.Delete(ctx, emailID); err != nil {
		return err
	}
	if err := s.tokens.DeleteByEmail(ctx, row.Email); err != nil {
		return err
	}

	s.log(ctx, &userID, entity.EmailRemoved, map[string]any{"email": row.Email})
	return nil
}

// SetPrimary promotes a verified address to primary, or demotes one.
// Promotion clears every other primary flag and mirrors the address into
// users.email as a single atomic swap. Demotion is a plain flag update; it
// cannot create a second primary so it needs no transaction.
func (s *EmailService) SetPrimary(ctx context.Context, userID, emailID uuid.UUID, isPrimary bool) (*entity.UserEmail, error) {
	row, err := s.emails.FindByID(ctx, userID, emailID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrEmailNotFound
	}

	if !isPrimary {
		if err := s.emails.SetPrimaryFlag(ctx, emailID, false); err != nil {
			return nil, err
		}
		row.IsPrimary = false
		return row, nil
	}

	if !row.Verified {
		return nil, ErrEmailNotVerified
	}

	if err := s.emails.Promote(ctx, userID, emailID, row.Email); err != nil {
		return nil, err
	}
	row.IsPrimary = true

	s.log(ctx, &userID, entity.PrimaryChanged, map[string]any{"email": row.Email})
	return row, nil
}

// Verify consumes a verification token and marks the bound address verified.
// Tokens are single use: the row is deleted on success, and an expired token
// is deleted on first access.
func (s *EmailService) Verify(ctx context.Context, rawToken string) (string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return "", ErrInvalidInput
	}

	token, err := s.tokens.FindByTokenHash(ctx, utils.HashToken(rawToken))
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", ErrInvalidToken
	}

	if !s.now().Before(token.ExpiresAt) {
		if err := s.tokens.Delete(ctx, token.ID); err != nil {
			return "", err
		}
		return "", ErrTokenExpired
	}

	row, err := s.emails.FindByEmail(ctx, token.Email)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", ErrEmailNotFound
	}

	if err := s.emails.MarkVerified(ctx, token.Email); err != nil {
		return "", err
	}
	if err := s.tokens.Delete(ctx, token.ID); err != nil {
		return "", err
	}

	s.log(ctx, &row.UserID, entity.EmailVerified, map[string]any{"email": token.Email})
	return token.Email, nil
}

// Resend reissues a verification token for a known, still-unverified address.
func (s *EmailService) Resend(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return ErrInvalidInput
	}

	row, err := s.emails.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrEmailNotFound
	}
	if row.Verified {
		return ErrAlreadyVerified
	}

	return s.issue(ctx, email)
}

// issue replaces any live token for the address with a fresh one. Deleting
// first keeps at most one consumable token per address; a superseded token
// is gone before the new one exists.
func (s *EmailService) issue(ctx context.Context, email string) error {
	if err := s.tokens.DeleteByEmail(ctx, email); err != nil {
		return err
	}

	rawToken, err := utils.GenerateRandomToken(32)
	if err != nil {
		return err
	}

	token := &entity.EmailVerificationToken{
		Email:     email,
		TokenHash: utils.HashToken(rawToken),
		ExpiresAt: s.now().Add(s.verificationTokenTTL()),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return err
	}

	if s.emailSender == nil {
		return nil
	}
	return s.emailSender.SendVerificationEmail(ctx, email, rawToken)
}

func (s *EmailService) log(ctx context.Context, userID *uuid.UUID, action entity.AuditAction, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		if bytes, err := json.Marshal(metadata); err == nil {
			payload = datatypes.JSON(bytes)
		}
	}
	_ = s.audit.Log(ctx, &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: payload,
	})
}

func (s *EmailService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *EmailService) verificationTokenTTL() time.Duration {
	if s.config.VerificationTokenTTL > 0 {
		return s.config.VerificationTokenTTL
	}
	return 24 * time.Hour
}
