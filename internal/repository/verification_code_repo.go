package repository

import (
	"context"
	"errors"
	"time"

	"authgate/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VerificationCodeRepository interface {
	Create(ctx context.Context, code *entity.VerificationCode) error
	FindByHash(ctx context.Context, codeHash string, purpose entity.VerificationPurpose) (*entity.VerificationCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountSince(ctx context.Context, userID uuid.UUID, purpose entity.VerificationPurpose, since time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) error
}

type verificationCodeRepository struct {
	db *gorm.DB
}

func NewVerificationCodeRepository(db *gorm.DB) VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

func (r *verificationCodeRepository) Create(ctx context.Context, c *entity.VerificationCode) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *verificationCodeRepository) FindByHash(
	ctx context.Context,
	codeHash string,
	purpose entity.VerificationPurpose,
) (*entity.VerificationCode, error) {

	var code entity.VerificationCode
	err := r.db.WithContext(ctx).
		Where("code_hash = ? AND purpose = ?", codeHash, purpose).
		First(&code).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &code, err
}

func (r *verificationCodeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entity.VerificationCode{}).
		Error
}

func (r *verificationCodeRepository) CountSince(
	ctx context.Context,
	userID uuid.UUID,
	purpose entity.VerificationPurpose,
	since time.Time,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.VerificationCode{}).
		Where("user_id = ? AND purpose = ? AND created_at > ?", userID, purpose, since).
		Count(&count).Error
	return count, err
}

func (r *verificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&entity.VerificationCode{}).
		Error
}
