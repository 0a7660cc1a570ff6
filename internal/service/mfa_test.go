package service

import (
	"context"
	"testing"
	"time"

	"authgate/internal/entity"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMFAManager(t *testing.T) (*MFAManager, *memMFARepo, *entity.User) {
	t.Helper()
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := newMemMFARepo()
	manager := NewMFAManager(repo, NewTOTPProvider("AuthgateTest"), clock, "AuthgateTest")
	user := &entity.User{ID: uuid.New(), Email: "user@example.com"}
	return manager, repo, user
}

func TestMFAManager_BeginEnrollment(t *testing.T) {
	manager, repo, user := newTestMFAManager(t)
	ctx := context.Background()

	setup, err := manager.BeginEnrollment(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.ProvisioningURI, "otpauth://totp/")
	assert.False(t, setup.AlreadyEnabled)

	stored, err := repo.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Enabled())

	// A second begin reuses the pending secret.
	again, err := manager.BeginEnrollment(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, setup.Secret, again.Secret)
}

func TestMFAManager_BeginEnrollment_AlreadyEnabled(t *testing.T) {
	manager, _, user := newTestMFAManager(t)
	ctx := context.Background()

	enrollAndConfirm(t, manager, user)

	setup, err := manager.BeginEnrollment(ctx, user)
	require.NoError(t, err)
	assert.True(t, setup.AlreadyEnabled)
	// Secret never leaves the server once enabled.
	assert.Empty(t, setup.Secret)
	assert.Empty(t, setup.ProvisioningURI)
}

func TestMFAManager_ConfirmEnrollment_InvalidCode(t *testing.T) {
	manager, repo, user := newTestMFAManager(t)
	ctx := context.Background()

	_, err := manager.BeginEnrollment(ctx, user)
	require.NoError(t, err)

	err = manager.ConfirmEnrollment(ctx, user.ID, "000000")
	assert.ErrorIs(t, err, ErrInvalidMFACode)

	// Enrollment stays pending: secret retained, not enabled.
	stored, err := repo.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Enabled())
	assert.NotEmpty(t, stored.Secret)
}

func TestMFAManager_ConfirmEnrollment_WithoutSetup(t *testing.T) {
	manager, _, user := newTestMFAManager(t)

	err := manager.ConfirmEnrollment(context.Background(), user.ID, "123456")
	assert.ErrorIs(t, err, ErrMFANotEnabled)
}

func TestMFAManager_EnrollConfirmChallenge(t *testing.T) {
	manager, _, user := newTestMFAManager(t)
	ctx := context.Background()

	secret := enrollAndConfirm(t, manager, user)

	enabled, err := manager.Enabled(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, enabled)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, manager.Challenge(ctx, user.ID, code))

	err = manager.Challenge(ctx, user.ID, "000000")
	assert.ErrorIs(t, err, ErrInvalidMFACode)
}

func TestMFAManager_ChallengeWhilePending(t *testing.T) {
	manager, _, user := newTestMFAManager(t)
	ctx := context.Background()

	setup, err := manager.BeginEnrollment(ctx, user)
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)

	// Pending enrollment must not satisfy a login challenge.
	err = manager.Challenge(ctx, user.ID, code)
	assert.ErrorIs(t, err, ErrMFANotEnabled)
}

func TestMFAManager_Revoke(t *testing.T) {
	manager, repo, user := newTestMFAManager(t)
	ctx := context.Background()

	secret := enrollAndConfirm(t, manager, user)
	require.NoError(t, manager.Revoke(ctx, user.ID))

	stored, err := repo.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	enabled, err := manager.Enabled(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, enabled)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	err = manager.Challenge(ctx, user.ID, code)
	assert.ErrorIs(t, err, ErrMFANotEnabled)
}

func enrollAndConfirm(t *testing.T, manager *MFAManager, user *entity.User) string {
	t.Helper()
	ctx := context.Background()

	setup, err := manager.BeginEnrollment(ctx, user)
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, manager.ConfirmEnrollment(ctx, user.ID, code))
	return setup.Secret
}
