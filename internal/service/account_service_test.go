package service_test

import (
	"context"
	"testing"
	"time"

	"accountd/internal/entity"
	"accountd/internal/service"

	"github.com/stretchr/testify/require"
)

type accountFixture struct {
	users    *memoryUserRepo
	sessions *memorySessionRepo
	audit    *memoryAuditRepo
	clock    *fakeClock
	svc      *service.AccountService
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	users := newMemoryUserRepo()
	sessions := newMemorySessionRepo()
	audit := &memoryAuditRepo{}
	clock := newFakeClock()
	sessions.now = clock.Now

	svc := service.NewAccountService(
		users,
		sessions,
		audit,
		service.BcryptPasswordHasher{Cost: 4},
		stubTokenIssuer{},
		clock,
		service.Config{RefreshTokenTTL: time.Hour},
	)
	return &accountFixture{users: users, sessions: sessions, audit: audit, clock: clock, svc: svc}
}

func (f *accountFixture) register(t *testing.T, email, username string) *entity.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), service.RegisterInput{
		Email:    email,
		Password: "secret123",
		Username: username,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterDefaultsAndHashing(t *testing.T) {
	f := newAccountFixture(t)

	user := f.register(t, "a@b.com", "alice")
	require.Equal(t, entity.UserRoleUser, user.Role)
	require.NotEqual(t, "secret123", user.PasswordHash)
	require.Contains(t, f.audit.actions(), entity.UserRegistered)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAccountFixture(t)

	f.register(t, "a@b.com", "alice")
	_, err := f.svc.Register(context.Background(), service.RegisterInput{
		Email:    "a@b.com",
		Password: "secret123",
		Username: "other",
	})
	require.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newAccountFixture(t)

	f.register(t, "a@b.com", "alice")
	_, err := f.svc.Register(context.Background(), service.RegisterInput{
		Email:    "other@b.com",
		Password: "secret123",
		Username: "alice",
	})
	require.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	f := newAccountFixture(t)

	_, err := f.svc.Register(context.Background(), service.RegisterInput{
		Email:    "a@b.com",
		Password: "secret123",
		Username: "alice",
		Role:     "root",
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestLoginFlow(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	f.register(t, "a@b.com", "alice")

	_, err := f.svc.Login(ctx, service.LoginInput{
		Email:    "a@b.com",
		Password: "wrong",
		DeviceID: "dev-1",
	})
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, service.LoginInput{
		Email:    "nobody@b.com",
		Password: "secret123",
		DeviceID: "dev-1",
	})
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	result, err := f.svc.Login(ctx, service.LoginInput{
		Email:    "a@b.com",
		Password: "secret123",
		DeviceID: "dev-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)
	require.Contains(t, f.audit.actions(), entity.LoginSuccess)
	require.Contains(t, f.audit.actions(), entity.LoginFailed)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	f.register(t, "a@b.com", "alice")

	login, err := f.svc.Login(ctx, service.LoginInput{
		Email:    "a@b.com",
		Password: "secret123",
		DeviceID: "dev-1",
	})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The pre-rotation token no longer resolves a session.
	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidSession)

	_, err = f.svc.Refresh(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	user := f.register(t, "a@b.com", "alice")

	login, err := f.svc.Login(ctx, service.LoginInput{
		Email:    "a@b.com",
		Password: "secret123",
		DeviceID: "dev-1",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.LogoutAll(ctx, user.ID, nil))

	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidSession)
}

func TestChangeUsername(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	user := f.register(t, "a@b.com", "alice")
	f.register(t, "b@b.com", "bob")

	err := f.svc.ChangeUsername(ctx, user.ID, "bob")
	require.ErrorIs(t, err, service.ErrUsernameTaken)

	err = f.svc.ChangeUsername(ctx, user.ID, "al")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	require.NoError(t, f.svc.ChangeUsername(ctx, user.ID, "alice2"))
	updated, err := f.svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "alice2", updated.Username)

	// Re-saving your own name is not a collision.
	require.NoError(t, f.svc.ChangeUsername(ctx, user.ID, "alice2"))
}

func TestUpdateProfilePatchesFields(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	user := f.register(t, "a@b.com", "alice")

	name := "Alice"
	phone := "+15551234567"
	updated, err := f.svc.UpdateProfile(ctx, user.ID, service.ProfileUpdateInput{
		Name:  &name,
		Phone: &phone,
	})
	require.NoError(t, err)
	require.Equal(t, "Alice", *updated.Name)
	require.Equal(t, "+15551234567", *updated.Phone)
	require.Equal(t, "alice", updated.Username)

	surname := "Smith"
	updated, err = f.svc.UpdateProfile(ctx, user.ID, service.ProfileUpdateInput{Surname: &surname})
	require.NoError(t, err)
	require.Equal(t, "Alice", *updated.Name)
	require.Equal(t, "Smith", *updated.Surname)
}

func TestUpdateProfileUsernameConflict(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	user := f.register(t, "a@b.com", "alice")
	f.register(t, "b@b.com", "bob")

	taken := "bob"
	_, err := f.svc.UpdateProfile(ctx, user.ID, service.ProfileUpdateInput{Username: &taken})
	require.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestAdminDashboardCounts(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	f.register(t, "u1@b.com", "u1")
	f.register(t, "u2@b.com", "u2")
	_, err := f.svc.Register(ctx, service.RegisterInput{
		Email: "adm@b.com", Password: "secret123", Username: "adm", Role: "admin",
	})
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, service.RegisterInput{
		Email: "root@b.com", Password: "secret123", Username: "root", Role: "super_admin",
	})
	require.NoError(t, err)

	data, err := f.svc.AdminDashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), data.TotalUsers)
	require.Equal(t, int64(2), data.TotalAdmins)
	require.Equal(t, int64(2), data.UsersByRole["user"])
	require.Equal(t, int64(1), data.UsersByRole["admin"])
	require.Equal(t, int64(1), data.UsersByRole["super_admin"])
	require.NotEmpty(t, data.RecentActivity)
}
