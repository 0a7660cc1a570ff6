package service

import (
	"context"
	"time"

	"authgate/internal/entity"
	"authgate/internal/repository"
	"authgate/internal/utils"

	"github.com/google/uuid"
)

const verificationCodeBytes = 32

// VerificationRegistry issues and consumes single-use codes. Codes are
// random and stored hashed; a consumed code is deleted so it cannot be
// replayed, and expiry bounds how long an unconsumed code stays valid.
type VerificationRegistry struct {
	codes repository.VerificationCodeRepository
	clock Clock
}

func NewVerificationRegistry(codes repository.VerificationCodeRepository, clock Clock) *VerificationRegistry {
	return &VerificationRegistry{codes: codes, clock: clock}
}

// Issue creates a code and returns the raw value, the only time it ever
// leaves the registry.
func (r *VerificationRegistry) Issue(
	ctx context.Context,
	userID uuid.UUID,
	purpose entity.VerificationPurpose,
	ttl time.Duration,
) (string, error) {
	rawCode, err := utils.GenerateRandomCode(verificationCodeBytes)
	if err != nil {
		return "", err
	}

	now := r.clock.Now()
	code := &entity.VerificationCode{
		UserID:    userID,
		CodeHash:  utils.HashCode(rawCode),
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := r.codes.Create(ctx, code); err != nil {
		return "", err
	}
	return rawCode, nil
}

// RateLimitCheck fails when maxAttempts codes of this purpose were already
// created for the user inside the window. The count and the subsequent
// Issue are separate round-trips, so concurrent requests can overshoot the
// cap by their surplus; this is a throttle, not a security boundary.
func (r *VerificationRegistry) RateLimitCheck(
	ctx context.Context,
	userID uuid.UUID,
	purpose entity.VerificationPurpose,
	window time.Duration,
	maxAttempts int,
) error {
	since := r.clock.Now().Add(-window)
	count, err := r.codes.CountSince(ctx, userID, purpose, since)
	if err != nil {
		return err
	}
	if count >= int64(maxAttempts) {
		return ErrTooManyRequests
	}
	return nil
}

// Consume resolves the code to its owning user and deletes it.
func (r *VerificationRegistry) Consume(
	ctx context.Context,
	rawCode string,
	purpose entity.VerificationPurpose,
) (uuid.UUID, error) {
	code, err := r.codes.FindByHash(ctx, utils.HashCode(rawCode), purpose)
	if err != nil {
		return uuid.Nil, err
	}
	if code == nil {
		return uuid.Nil, ErrCodeNotFound
	}
	if !r.clock.Now().Before(code.ExpiresAt) {
		return uuid.Nil, ErrCodeExpired
	}
	if err := r.codes.Delete(ctx, code.ID); err != nil {
		return uuid.Nil, err
	}
	return code.UserID, nil
}
