package entity

import (
	"time"

	"github.com/google/uuid"
)

// MFASecret holds a user's TOTP shared secret. A row with a nil EnabledAt
// is a pending enrollment; revocation deletes the row so secret and
// enablement are always cleared together.
type MFASecret struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	Secret    string `gorm:"type:text;not null"`
	EnabledAt *time.Time

	CreatedAt time.Time
}

func (s *MFASecret) Enabled() bool {
	return s.EnabledAt != nil
}
