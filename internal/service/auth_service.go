package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"authgate/internal/entity"
	"authgate/internal/repository"
	"authgate/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Compared against when the account does not exist, so both branches of a
// failed login cost one bcrypt verify.
const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// AuthService composes the session manager, verification registry, MFA
// manager and token issuer into the register/login/refresh/reset use
// cases. It holds no request state of its own.
type AuthService struct {
	users        repository.UserRepository
	securityLogs repository.SecurityLogRepository

	sessions *SessionManager
	codes    *VerificationRegistry
	mfa      *MFAManager

	emailSender  EmailSender
	passwordHash PasswordHasher
	tokens       TokenIssuer
	clock        Clock
	logger       logrus.FieldLogger
	config       AuthConfig
}

func NewAuthService(
	users repository.UserRepository,
	securityLogs repository.SecurityLogRepository,
	sessions *SessionManager,
	codes *VerificationRegistry,
	mfa *MFAManager,
	emailSender EmailSender,
	passwordHash PasswordHasher,
	tokens TokenIssuer,
	clock Clock,
	logger logrus.FieldLogger,
	config AuthConfig,
) *AuthService {
	return &AuthService{
		users:        users,
		securityLogs: securityLogs,
		sessions:     sessions,
		codes:        codes,
		mfa:          mfa,
		emailSender:  emailSender,
		passwordHash: passwordHash,
		tokens:       tokens,
		clock:        clock,
		logger:       logger,
		config:       config,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidInput
	}

	email := utils.NormalizeEmail(input.Email)
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailAlreadyRegistered
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	code, err := s.codes.Issue(ctx, user.ID, entity.EmailVerification, s.emailCodeTTL())
	if err != nil {
		return nil, err
	}
	s.deliverVerificationEmail(ctx, user.Email, code)

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidInput
	}

	email := utils.NormalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.passwordHash.Verify(dummyPasswordHash, input.Password)
		_ = s.logSecurity(ctx, nil, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}

	if !s.passwordHash.Verify(user.PasswordHash, input.Password) {
		_ = s.logSecurity(ctx, &user.ID, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}

	enabled, err := s.mfa.Enabled(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if enabled {
		return &LoginResult{User: user, MFARequired: true}, nil
	}

	result, err := s.createSessionAndTokens(ctx, user, input.UserAgent)
	if err != nil {
		return nil, err
	}
	_ = s.logSecurity(ctx, &user.ID, input.IPAddress, entity.LoginSuccess, nil)
	return result, nil
}

// VerifyMFALogin completes a login that Login answered with MFARequired.
func (s *AuthService) VerifyMFALogin(ctx context.Context, input MFALoginInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Code) == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.mfa.Challenge(ctx, user.ID, input.Code); err != nil {
		if errors.Is(err, ErrInvalidMFACode) {
			_ = s.logSecurity(ctx, &user.ID, input.IPAddress, entity.MFAFailed, nil)
		}
		return nil, err
	}

	result, err := s.createSessionAndTokens(ctx, user, input.UserAgent)
	if err != nil {
		return nil, err
	}
	_ = s.logSecurity(ctx, &user.ID, input.IPAddress, entity.LoginSuccess, map[string]any{"mfa": true})
	return result, nil
}

// Refresh verifies the refresh token, re-resolves the session it points
// at, slides the expiry when close to it and always mints a fresh access
// token. A new refresh token is issued only when the expiry moved.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrUnauthorized
	}

	sessionID, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Expired(s.clock.Now()) {
		return nil, ErrUnauthorized
	}

	rotated, err := s.sessions.ExtendIfNearExpiry(ctx, session)
	if err != nil {
		return nil, err
	}

	accessToken, expiresIn, err := s.tokens.IssueAccessToken(session.UserID, session.ID)
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{
		AccessToken: accessToken,
		ExpiresIn:   int64(expiresIn.Seconds()),
		Rotated:     rotated,
	}
	if rotated {
		newRefresh, refreshTTL, err := s.tokens.IssueRefreshToken(session.ID)
		if err != nil {
			return nil, err
		}
		result.RefreshToken = newRefresh
		result.RefreshExpiresIn = int64(refreshTTL.Seconds())
	}
	return result, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrInvalidInput
	}
	userID, err := s.codes.Consume(ctx, code, entity.EmailVerification)
	if err != nil {
		return err
	}
	return s.users.MarkEmailVerified(ctx, userID)
}

// ForgotPassword never reveals whether the email is registered; unknown
// addresses take the same success path minus the side effects.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	if err := s.codes.RateLimitCheck(ctx, user.ID, entity.PasswordReset, s.resetRateWindow(), s.resetRateMax()); err != nil {
		return err
	}

	code, err := s.codes.Issue(ctx, user.ID, entity.PasswordReset, s.resetCodeTTL())
	if err != nil {
		return err
	}
	s.deliverPasswordResetEmail(ctx, user.Email, code)

	_ = s.logSecurity(ctx, &user.ID, nil, entity.Reset, map[string]any{"stage": "requested"})
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, code string, newPassword string) error {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(newPassword) == "" {
		return ErrInvalidInput
	}

	userID, err := s.codes.Consume(ctx, code, entity.PasswordReset)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	hash, err := s.passwordHash.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	// Every outstanding session and refresh token dies with the old
	// password.
	if err := s.sessions.RevokeAllForUser(ctx, user.ID); err != nil {
		return err
	}

	_ = s.logSecurity(ctx, &user.ID, nil, entity.Reset, map[string]any{"stage": "completed"})
	return nil
}

// Logout revokes a single session. A session that is already gone counts
// as logged out.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID, userID *uuid.UUID, ipAddress *string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return err
		}
	}
	_ = s.logSecurity(ctx, userID, ipAddress, entity.Logout, nil)
	return nil
}

func (s *AuthService) ListSessions(ctx context.Context, userID uuid.UUID) ([]entity.Session, error) {
	return s.sessions.ListActive(ctx, userID)
}

func (s *AuthService) RevokeSession(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	if err := s.sessions.RevokeOwned(ctx, sessionID, userID); err != nil {
		return err
	}
	_ = s.logSecurity(ctx, &userID, nil, entity.SessionRevoked, map[string]any{"session_id": sessionID.String()})
	return nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) BeginMFAEnrollment(ctx context.Context, userID uuid.UUID) (*EnrollmentSetup, error) {
	user, err := s.GetCurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.mfa.BeginEnrollment(ctx, user)
}

func (s *AuthService) ConfirmMFAEnrollment(ctx context.Context, userID uuid.UUID, code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrInvalidInput
	}
	return s.mfa.ConfirmEnrollment(ctx, userID, code)
}

func (s *AuthService) RevokeMFA(ctx context.Context, userID uuid.UUID) error {
	return s.mfa.Revoke(ctx, userID)
}

func (s *AuthService) MFAEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.mfa.Enabled(ctx, userID)
}

func (s *AuthService) createSessionAndTokens(
	ctx context.Context,
	user *entity.User,
	userAgent *string,
) (*LoginResult, error) {
	session, err := s.sessions.Create(ctx, user.ID, userAgent)
	if err != nil {
		return nil, err
	}

	accessToken, expiresIn, err := s.tokens.IssueAccessToken(user.ID, session.ID)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshTTL, err := s.tokens.IssueRefreshToken(session.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:             user,
		AccessToken:      accessToken,
		ExpiresIn:        int64(expiresIn.Seconds()),
		RefreshToken:     refreshToken,
		RefreshExpiresIn: int64(refreshTTL.Seconds()),
	}, nil
}

func (s *AuthService) deliverVerificationEmail(ctx context.Context, email string, code string) {
	if s.emailSender == nil {
		return
	}
	if err := s.emailSender.SendVerificationEmail(ctx, email, code); err != nil {
		s.log().WithError(err).WithField("email", email).Error("verification email delivery failed")
	}
}

func (s *AuthService) deliverPasswordResetEmail(ctx context.Context, email string, code string) {
	if s.emailSender == nil {
		return
	}
	if err := s.emailSender.SendPasswordResetEmail(ctx, email, code); err != nil {
		s.log().WithError(err).WithField("email", email).Error("password reset email delivery failed")
	}
}

func (s *AuthService) logSecurity(
	ctx context.Context,
	userID *uuid.UUID,
	ipAddress *string,
	action entity.SecurityAction,
	metadata map[string]any,
) error {
	if s.securityLogs == nil {
		return nil
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(bytes)
	}

	log := &entity.SecurityLog{
		UserID:    userID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	}
	return s.securityLogs.Log(ctx, log)
}

func (s *AuthService) log() logrus.FieldLogger {
	if s.logger == nil {
		return logrus.StandardLogger()
	}
	return s.logger
}

func (s *AuthService) emailCodeTTL() time.Duration {
	if s.config.EmailCodeTTL > 0 {
		return s.config.EmailCodeTTL
	}
	return 45 * time.Minute
}

func (s *AuthService) resetCodeTTL() time.Duration {
	if s.config.ResetCodeTTL > 0 {
		return s.config.ResetCodeTTL
	}
	return time.Hour
}

func (s *AuthService) resetRateWindow() time.Duration {
	if s.config.ResetRateWindow > 0 {
		return s.config.ResetRateWindow
	}
	return 3 * time.Minute
}

func (s *AuthService) resetRateMax() int {
	if s.config.ResetRateMax > 0 {
		return s.config.ResetRateMax
	}
	return 2
}
