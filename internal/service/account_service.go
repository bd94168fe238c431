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

const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// AccountService covers registration, credential sign-in, profile edits and
// the admin dashboard.
type AccountService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	audit    repository.AuditLogRepository

	passwordHash PasswordHasher
	accessTokens AccessTokenIssuer
	clock        Clock
	config       Config
}

func NewAccountService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	audit repository.AuditLogRepository,
	passwordHash PasswordHasher,
	accessTokens AccessTokenIssuer,
	clock Clock,
	config Config,
) *AccountService {
	return &AccountService{
		users:        users,
		sessions:     sessions,
		audit:        audit,
		passwordHash: passwordHash,
		accessTokens: accessTokens,
		clock:        clock,
		config:       config,
	}
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	email := utils.NormalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)
	if email == "" || input.Password == "" || username == "" {
		return nil, ErrInvalidInput
	}

	role := entity.UserRoleUser
	if input.Role != "" {
		role = entity.UserRole(input.Role)
		if !role.Valid() {
			return nil, ErrInvalidInput
		}
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	existing, err = s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log(ctx, &user.ID, nil, entity.UserRegistered, map[string]any{"email": email})
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" || strings.TrimSpace(input.DeviceID) == "" {
		return nil, ErrInvalidInput
	}

	email := utils.NormalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn a comparison so unknown addresses cost the same as wrong passwords.
		_ = s.passwordHash.Verify(dummyPasswordHash, input.Password)
		s.log(ctx, nil, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}

	if !s.passwordHash.Verify(user.PasswordHash, input.Password) {
		s.log(ctx, &user.ID, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}

	result, err := s.createSessionAndTokens(ctx, user, input)
	if err != nil {
		return nil, err
	}

	s.log(ctx, &user.ID, input.IPAddress, entity.LoginSuccess, map[string]any{"device_id": input.DeviceID})
	return result, nil
}

func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.sessions.FindByTokenHash(ctx, utils.HashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidSession
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	newToken, newHash, newExpiry, err := s.buildRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.sessions.RotateToken(ctx, session.ID, newHash, newExpiry); err != nil {
		return nil, err
	}

	accessToken, expiresIn, err := s.accessTokens.IssueAccessToken(*user, session.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:      accessToken,
		ExpiresIn:        int64(expiresIn.Seconds()),
		RefreshToken:     newToken,
		RefreshExpiresIn: int64(newExpiry.Sub(s.now()).Seconds()),
	}, nil
}

func (s *AccountService) Logout(ctx context.Context, sessionID uuid.UUID, userID *uuid.UUID, ipAddress *string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.log(ctx, userID, ipAddress, entity.Logout, nil)
	return nil
}

func (s *AccountService) LogoutAll(ctx context.Context, userID uuid.UUID, ipAddress *string) error {
	if err := s.sessions.RevokeAllByUser(ctx, userID); err != nil {
		return err
	}
	s.log(ctx, &userID, ipAddress, entity.Logout, map[string]any{"scope": "all"})
	return nil
}

func (s *AccountService) Profile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileUpdateInput) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if len(username) < 3 {
			return nil, ErrInvalidInput
		}
		if err := s.checkUsernameFree(ctx, username, userID); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if input.Name != nil {
		user.Name = input.Name
	}
	if input.Surname != nil {
		user.Surname = input.Surname
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Image != nil {
		user.Image = input.Image
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *AccountService) ChangeUsername(ctx context.Context, userID uuid.UUID, username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return ErrInvalidInput
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.checkUsernameFree(ctx, username, userID); err != nil {
		return err
	}

	user.Username = username
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrUsernameTaken
		}
		return err
	}

	s.log(ctx, &userID, nil, entity.UsernameChanged, map[string]any{"username": username})
	return nil
}

func (s *AccountService) AdminDashboard(ctx context.Context) (*DashboardData, error) {
	counts, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{UsersByRole: make(map[string]int64, len(counts))}
	for role, count := range counts {
		data.UsersByRole[string(role)] = count
		data.TotalUsers += count
		if role.IsAdmin() {
			data.TotalAdmins += count
		}
	}

	if s.audit != nil {
		recent, err := s.audit.Recent(ctx, 20)
		if err != nil {
			return nil, err
		}
		data.RecentActivity = recent
	}
	return data, nil
}

func (s *AccountService) checkUsernameFree(ctx context.Context, username string, userID uuid.UUID) error {
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != userID {
		return ErrUsernameTaken
	}
	return nil
}

func (s *AccountService) createSessionAndTokens(ctx context.Context, user *entity.User, input LoginInput) (*LoginResult, error) {
	refreshToken, refreshHash, refreshExpiry, err := s.buildRefreshToken()
	if err != nil {
		return nil, err
	}

	session := &entity.Session{
		UserID:     user.ID,
		TokenHash:  refreshHash,
		DeviceID:   input.DeviceID,
		DeviceName: input.DeviceName,
		IPAddress:  input.IPAddress,
		UserAgent:  input.UserAgent,
		ExpiresAt:  refreshExpiry,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	accessToken, expiresIn, err := s.accessTokens.IssueAccessToken(*user, session.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:      accessToken,
		ExpiresIn:        int64(expiresIn.Seconds()),
		RefreshToken:     refreshToken,
		RefreshExpiresIn: int64(refreshExpiry.Sub(s.now()).Seconds()),
	}, nil
}

func (s *AccountService) buildRefreshToken() (string, string, time.Time, error) {
	rawToken, err := utils.GenerateRandomToken(48)
	if err != nil {
		return "", "", time.Time{}, err
	}
	expiresAt := s.now().Add(s.refreshTokenTTL())
	return rawToken, utils.HashToken(rawToken), expiresAt, nil
}

func (s *AccountService) log(
	ctx context.Context,
	userID *uuid.UUID,
	ipAddress *string,
	action entity.AuditAction,
	metadata map[string]any,
) {
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
		UserID:    userID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	})
}

func (s *AccountService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *AccountService) refreshTokenTTL() time.Duration {
	if s.config.RefreshTokenTTL > 0 {
		return s.config.RefreshTokenTTL
	}
	return 30 * 24 * time.Hour
}
