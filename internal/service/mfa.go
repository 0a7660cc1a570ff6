package service

import (
	"context"

	"authgate/internal/entity"
	"authgate/internal/repository"

	"github.com/google/uuid"
)

// MFAManager drives TOTP enrollment and the per-login challenge. A stored
// secret without an enabled timestamp is a pending enrollment; the secret
// is returned to the caller only in that phase.
type MFAManager struct {
	secrets  repository.MFASecretRepository
	provider MFAProvider
	clock    Clock
	issuer   string
}

func NewMFAManager(
	secrets repository.MFASecretRepository,
	provider MFAProvider,
	clock Clock,
	issuer string,
) *MFAManager {
	return &MFAManager{
		secrets:  secrets,
		provider: provider,
		clock:    clock,
		issuer:   issuer,
	}
}

type EnrollmentSetup struct {
	AlreadyEnabled  bool
	Secret          string
	ProvisioningURI string
}

// BeginEnrollment generates and stores a secret in the pending state. An
// abandoned setup keeps the account login-capable, and calling it again
// for an already enabled user is a no-op rather than a failure. A pending
// secret is reused so a second setup screen shows the same QR code.
func (m *MFAManager) BeginEnrollment(ctx context.Context, user *entity.User) (*EnrollmentSetup, error) {
	existing, err := m.secrets.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Enabled() {
		return &EnrollmentSetup{AlreadyEnabled: true}, nil
	}

	secret := ""
	if existing != nil {
		secret = existing.Secret
	} else {
		secret, err = m.provider.GenerateSecret()
		if err != nil {
			return nil, err
		}
		record := &entity.MFASecret{
			UserID: user.ID,
			Secret: secret,
		}
		if err := m.secrets.Upsert(ctx, record); err != nil {
			return nil, err
		}
	}

	uri, err := m.provider.ProvisioningURI(user.Email, m.issuer, secret)
	if err != nil {
		return nil, err
	}
	return &EnrollmentSetup{Secret: secret, ProvisioningURI: uri}, nil
}

// ConfirmEnrollment validates the submitted code against the stored
// pending secret and flips the enrollment to enabled. A mismatch leaves
// the enrollment pending.
func (m *MFAManager) ConfirmEnrollment(ctx context.Context, userID uuid.UUID, code string) error {
	secret, err := m.secrets.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if secret == nil {
		return ErrMFANotEnabled
	}
	if secret.Enabled() {
		return nil
	}
	if !m.provider.ValidateCode(secret.Secret, code) {
		return ErrInvalidMFACode
	}

	now := m.clock.Now()
	secret.EnabledAt = &now
	return m.secrets.Upsert(ctx, secret)
}

// Revoke deletes the secret row, clearing secret and enablement in one
// write.
func (m *MFAManager) Revoke(ctx context.Context, userID uuid.UUID) error {
	return m.secrets.Delete(ctx, userID)
}

func (m *MFAManager) Enabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	secret, err := m.secrets.FindByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return secret != nil && secret.Enabled(), nil
}

// Challenge verifies the second factor during login.
func (m *MFAManager) Challenge(ctx context.Context, userID uuid.UUID, code string) error {
	secret, err := m.secrets.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if secret == nil || !secret.Enabled() {
		return ErrMFANotEnabled
	}
	if !m.provider.ValidateCode(secret.Secret, code) {
		return ErrInvalidMFACode
	}
	return nil
}
