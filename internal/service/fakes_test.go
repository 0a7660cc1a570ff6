package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"authgate/internal/entity"

	"github.com/google/uuid"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
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

type memUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	user, err := r.FindByEmail(ctx, email)
	return user != nil, err
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) MarkEmailVerified(_ context.Context, userID uuid.UUID) error {
	if user, ok := r.users[userID]; ok {
		now := time.Now()
		user.EmailVerifiedAt = &now
	}
	return nil
}

type memSessionRepo struct {
	clock    Clock
	sessions map[uuid.UUID]*entity.Session
	seq      int
}

func newMemSessionRepo(clock Clock) *memSessionRepo {
	return &memSessionRepo{clock: clock, sessions: make(map[uuid.UUID]*entity.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, session *entity.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	// Distinct creation instants so ordering is deterministic.
	r.seq++
	session.CreatedAt = r.clock.Now().Add(time.Duration(r.seq) * time.Millisecond)
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	clone := *session
	return &clone, nil
}

func (r *memSessionRepo) UpdateExpiry(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	if session, ok := r.sessions[id]; ok {
		session.ExpiresAt = expiresAt
	}
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.sessions[id]; !ok {
		return false, nil
	}
	delete(r.sessions, id)
	return true, nil
}

func (r *memSessionRepo) DeleteByIDAndUser(_ context.Context, id uuid.UUID, userID uuid.UUID) (bool, error) {
	session, ok := r.sessions[id]
	if !ok || session.UserID != userID {
		return false, nil
	}
	delete(r.sessions, id)
	return true, nil
}

func (r *memSessionRepo) DeleteAllByUser(_ context.Context, userID uuid.UUID) error {
	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memSessionRepo) ListActive(_ context.Context, userID uuid.UUID, now time.Time) ([]entity.Session, error) {
	var active []entity.Session
	for _, session := range r.sessions {
		if session.UserID == userID && session.ExpiresAt.After(now) {
			active = append(active, *session)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active, nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, now time.Time) error {
	for id, session := range r.sessions {
		if session.ExpiresAt.Before(now) {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memSessionRepo) setExpiry(id uuid.UUID, expiresAt time.Time) {
	if session, ok := r.sessions[id]; ok {
		session.ExpiresAt = expiresAt
	}
}

type memCodeRepo struct {
	codes map[uuid.UUID]*entity.VerificationCode
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{codes: make(map[uuid.UUID]*entity.VerificationCode)}
}

func (r *memCodeRepo) Create(_ context.Context, code *entity.VerificationCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	clone := *code
	r.codes[code.ID] = &clone
	return nil
}

func (r *memCodeRepo) FindByHash(
	_ context.Context,
	codeHash string,
	purpose entity.VerificationPurpose,
) (*entity.VerificationCode, error) {
	for _, code := range r.codes {
		if code.CodeHash == codeHash && code.Purpose == purpose {
			clone := *code
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memCodeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.codes, id)
	return nil
}

func (r *memCodeRepo) CountSince(
	_ context.Context,
	userID uuid.UUID,
	purpose entity.VerificationPurpose,
	since time.Time,
) (int64, error) {
	var count int64
	for _, code := range r.codes {
		if code.UserID == userID && code.Purpose == purpose && code.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *memCodeRepo) DeleteExpired(_ context.Context, now time.Time) error {
	for id, code := range r.codes {
		if code.ExpiresAt.Before(now) {
			delete(r.codes, id)
		}
	}
	return nil
}

type memMFARepo struct {
	secrets map[uuid.UUID]*entity.MFASecret
}

func newMemMFARepo() *memMFARepo {
	return &memMFARepo{secrets: make(map[uuid.UUID]*entity.MFASecret)}
}

func (r *memMFARepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.MFASecret, error) {
	secret, ok := r.secrets[userID]
	if !ok {
		return nil, nil
	}
	clone := *secret
	return &clone, nil
}

func (r *memMFARepo) Upsert(_ context.Context, secret *entity.MFASecret) error {
	if secret.ID == uuid.Nil {
		secret.ID = uuid.New()
	}
	clone := *secret
	r.secrets[secret.UserID] = &clone
	return nil
}

func (r *memMFARepo) Delete(_ context.Context, userID uuid.UUID) error {
	delete(r.secrets, userID)
	return nil
}

type memSecurityLogRepo struct {
	logs []entity.SecurityLog
}

func (r *memSecurityLogRepo) Log(_ context.Context, log *entity.SecurityLog) error {
	r.logs = append(r.logs, *log)
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) Verify(hash string, password string) bool {
	return hash == "hashed:"+password
}

type sentEmail struct {
	To   string
	Code string
	Kind string
}

type recordingEmailSender struct {
	sent []sentEmail
	fail bool
}

func (s *recordingEmailSender) SendVerificationEmail(_ context.Context, email string, code string) error {
	if s.fail {
		return context.DeadlineExceeded
	}
	s.sent = append(s.sent, sentEmail{To: email, Code: code, Kind: "verify"})
	return nil
}

func (s *recordingEmailSender) SendPasswordResetEmail(_ context.Context, email string, code string) error {
	if s.fail {
		return context.DeadlineExceeded
	}
	s.sent = append(s.sent, sentEmail{To: email, Code: code, Kind: "reset"})
	return nil
}
