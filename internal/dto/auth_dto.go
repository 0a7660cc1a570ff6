package dto

import (
	"time"

	"authgate/internal/entity"
)

type RegisterRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type MFALoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type LoginResponse struct {
	AccessToken string        `json:"access_token,omitempty"`
	ExpiresIn   int64         `json:"expires_in,omitempty"`
	MFARequired bool          `json:"mfa_required,omitempty"`
	User        *UserResponse `json:"user,omitempty"`
}

type PasswordForgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetRequest struct {
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type MFASetupResponse struct {
	AlreadyEnabled  bool   `json:"already_enabled,omitempty"`
	Secret          string `json:"secret,omitempty"`
	ProvisioningURI string `json:"provisioning_uri,omitempty"`
}

type MFAConfirmRequest struct {
	Code string `json:"code" validate:"required"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsCurrent bool      `json:"is_current,omitempty"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func UserResponseFromEntity(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID.String(),
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified(),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

func SessionResponseFromEntity(session *entity.Session, currentID string) SessionResponse {
	response := SessionResponse{
		ID:        session.ID.String(),
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		IsCurrent: session.ID.String() == currentID,
	}
	if session.UserAgent != nil {
		response.UserAgent = *session.UserAgent
	}
	return response
}

func SessionResponsesFromEntities(sessions []entity.Session, currentID string) []SessionResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		responses = append(responses, SessionResponseFromEntity(&sessions[i], currentID))
	}
	return responses
}
