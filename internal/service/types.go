package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig is built once at startup and passed in by value; components
// never read ambient state.
type AuthConfig struct {
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	RefreshRotateWithin time.Duration
	EmailCodeTTL        time.Duration
	ResetCodeTTL        time.Duration
	ResetRateWindow     time.Duration
	ResetRateMax        int
	MFAIssuer           string
}

type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email string, code string) error
	SendPasswordResetEmail(ctx context.Context, email string, code string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type TokenIssuer interface {
	IssueAccessToken(userID uuid.UUID, sessionID uuid.UUID) (string, time.Duration, error)
	IssueRefreshToken(sessionID uuid.UUID) (string, time.Duration, error)
	ParseRefreshToken(token string) (uuid.UUID, error)
}

type MFAProvider interface {
	GenerateSecret() (string, error)
	ProvisioningURI(email string, issuer string, secret string) (string, error)
	ValidateCode(secret string, code string) bool
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
