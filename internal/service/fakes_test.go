package service_test

import (
	"context"
	"sync"
	"time"

	"accountd/internal/entity"
	"accountd/internal/repository"

	"github.com/google/uuid"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repository.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email || existing.Username == user.Username {
			return repository.ErrConflict
		}
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) CountByRole(_ context.Context) (map[entity.UserRole]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[entity.UserRole]int64)
	for _, user := range r.users {
		counts[user.Role]++
	}
	return counts, nil
}

type memoryUserEmailRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*entity.UserEmail
	users *memoryUserRepo
}

func newMemoryUserEmailRepo(users *memoryUserRepo) *memoryUserEmailRepo {
	return &memoryUserEmailRepo{rows: make(map[uuid.UUID]*entity.UserEmail), users: users}
}

func (r *memoryUserEmailRepo) Create(_ context.Context, email *entity.UserEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Email == email.Email {
			return repository.ErrConflict
		}
	}
	if email.ID == uuid.Nil {
		email.ID = uuid.New()
	}
	email.CreatedAt = time.Now()
	clone := *email
	r.rows[email.ID] = &clone
	return nil
}

func (r *memoryUserEmailRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*entity.UserEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (r *memoryUserEmailRepo) FindByEmail(_ context.Context, email string) (*entity.UserEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == email {
			clone := *row
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryUserEmailRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.UserEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var emails []entity.UserEmail
	for _, row := range r.rows {
		if row.UserID == userID {
			emails = append(emails, *row)
		}
	}
	return emails, nil
}

func (r *memoryUserEmailRepo) MarkVerified(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == email {
			row.Verified = true
		}
	}
	return nil
}

func (r *memoryUserEmailRepo) SetPrimaryFlag(_ context.Context, id uuid.UUID, isPrimary bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		row.IsPrimary = isPrimary
	}
	return nil
}

func (r *memoryUserEmailRepo) Promote(_ context.Context, userID, id uuid.UUID, email string) error {
	r.mu.Lock()
	for _, row := range r.rows {
		if row.UserID == userID {
			row.IsPrimary = false
		}
	}
	if row, ok := r.rows[id]; ok {
		row.IsPrimary = true
	}
	r.mu.Unlock()

	r.users.mu.Lock()
	defer r.users.mu.Unlock()
	if user, ok := r.users.users[userID]; ok {
		user.Email = email
	}
	return nil
}

func (r *memoryUserEmailRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memoryUserEmailRepo) primaryCount(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, row := range r.rows {
		if row.UserID == userID && row.IsPrimary {
			count++
		}
	}
	return count
}

type memoryTokenRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*entity.EmailVerificationToken
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[uuid.UUID]*entity.EmailVerificationToken)}
}

func (r *memoryTokenRepo) Create(_ context.Context, t *entity.EmailVerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tokens {
		if existing.TokenHash == t.TokenHash {
			return repository.ErrConflict
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	clone := *t
	r.tokens[t.ID] = &clone
	return nil
}

func (r *memoryTokenRepo) FindByTokenHash(_ context.Context, hash string) (*entity.EmailVerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == hash {
			clone := *t
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
	return nil
}

func (r *memoryTokenRepo) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.Email == email {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *memoryTokenRepo) countByEmail(email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tokens {
		if t.Email == email {
			count++
		}
	}
	return count
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
	now      func() time.Time
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[uuid.UUID]*entity.Session), now: time.Now}
}

func (r *memorySessionRepo) Create(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	clone := *s
	r.sessions[s.ID] = &clone
	return nil
}

func (r *memorySessionRepo) FindByTokenHash(_ context.Context, hash string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.TokenHash == hash && s.RevokedAt == nil && s.ExpiresAt.After(r.now()) {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memorySessionRepo) RotateToken(_ context.Context, sessionID uuid.UUID, newHash string, newExpiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok {
		s.TokenHash = newHash
		s.ExpiresAt = newExpiry
	}
	return nil
}

func (r *memorySessionRepo) Revoke(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (r *memorySessionRepo) RevokeAllByUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

type memoryAuditRepo struct {
	mu   sync.Mutex
	logs []entity.AuditLog
}

func (r *memoryAuditRepo) Log(_ context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memoryAuditRepo) Recent(_ context.Context, limit int) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	logs := make([]entity.AuditLog, len(r.logs))
	copy(logs, r.logs)
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return logs, nil
}

func (r *memoryAuditRepo) actions() []entity.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var actions []entity.AuditAction
	for _, log := range r.logs {
		actions = append(actions, log.Action)
	}
	return actions
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type captureSender struct {
	mu     sync.Mutex
	sent   []sentEmail
}

type sentEmail struct {
	To    string
	Token string
}

func (s *captureSender) SendVerificationEmail(_ context.Context, email string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentEmail{To: email, Token: token})
	return nil
}

func (s *captureSender) lastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1].Token
}

type stubTokenIssuer struct{}

func (stubTokenIssuer) IssueAccessToken(user entity.User, sessionID uuid.UUID) (string, time.Duration, error) {
	return "access-" + user.ID.String() + "-" + sessionID.String(), 15 * time.Minute, nil
}
