package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is one authenticated device or browser instance. Revocation
// deletes the row, so presence plus an unexpired ExpiresAt is the single
// source of truth for "is this login still valid".
type Session struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	UserAgent *string `gorm:"type:text"`

	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
