package service

import (
	"context"
	"time"

	"authgate/internal/entity"
	"authgate/internal/repository"

	"github.com/google/uuid"
)

// SessionManager owns the session lifecycle. Every successful login gets
// its own row; revocation deletes it, and an absent or expired row is the
// only thing that invalidates an otherwise well-formed refresh token.
type SessionManager struct {
	sessions     repository.SessionRepository
	clock        Clock
	refreshTTL   time.Duration
	rotateWithin time.Duration
}

func NewSessionManager(
	sessions repository.SessionRepository,
	clock Clock,
	refreshTTL time.Duration,
	rotateWithin time.Duration,
) *SessionManager {
	if refreshTTL == 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	if rotateWithin == 0 {
		rotateWithin = 24 * time.Hour
	}
	return &SessionManager{
		sessions:     sessions,
		clock:        clock,
		refreshTTL:   refreshTTL,
		rotateWithin: rotateWithin,
	}
}

func (m *SessionManager) Create(ctx context.Context, userID uuid.UUID, userAgent *string) (*entity.Session, error) {
	session := &entity.Session{
		UserID:    userID,
		UserAgent: userAgent,
		ExpiresAt: m.clock.Now().Add(m.refreshTTL),
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (m *SessionManager) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	return m.sessions.FindByID(ctx, id)
}

// ExtendIfNearExpiry slides the expiry forward when one day or less
// remains, and reports whether it did. Concurrent refreshes can both
// observe "near expiry" and both extend; last write wins and only ever
// lengthens validity.
func (m *SessionManager) ExtendIfNearExpiry(ctx context.Context, session *entity.Session) (bool, error) {
	now := m.clock.Now()
	if session.ExpiresAt.Sub(now) > m.rotateWithin {
		return false, nil
	}
	newExpiry := now.Add(m.refreshTTL)
	if err := m.sessions.UpdateExpiry(ctx, session.ID, newExpiry); err != nil {
		return false, err
	}
	session.ExpiresAt = newExpiry
	return true, nil
}

// Revoke deletes the session. A second revoke of the same ID fails with
// not-found rather than silently succeeding.
func (m *SessionManager) Revoke(ctx context.Context, id uuid.UUID) error {
	deleted, err := m.sessions.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}

// RevokeOwned revokes a session only if it belongs to userID.
func (m *SessionManager) RevokeOwned(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	deleted, err := m.sessions.DeleteByIDAndUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}

func (m *SessionManager) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return m.sessions.DeleteAllByUser(ctx, userID)
}

// ListActive returns unexpired sessions, newest first.
func (m *SessionManager) ListActive(ctx context.Context, userID uuid.UUID) ([]entity.Session, error) {
	return m.sessions.ListActive(ctx, userID, m.clock.Now())
}
