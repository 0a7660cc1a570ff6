package entity

import (
	"time"

	"github.com/google/uuid"
)

type VerificationPurpose string

const (
	EmailVerification VerificationPurpose = "email_verification"
	PasswordReset     VerificationPurpose = "password_reset"
)

// VerificationCode is a single-use proof of inbox possession. Only the
// SHA-256 hash of the issued code is stored; consumption deletes the row.
type VerificationCode struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	CodeHash string              `gorm:"type:text;uniqueIndex;not null"`
	Purpose  VerificationPurpose `gorm:"type:varchar(32);not null"`

	ExpiresAt time.Time
	CreatedAt time.Time
}
