package service

import "authgate/internal/entity"

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress *string
	UserAgent *string
}

type MFALoginInput struct {
	Email     string
	Code      string
	IPAddress *string
	UserAgent *string
}

type LoginResult struct {
	User             *entity.User
	AccessToken      string
	ExpiresIn        int64
	RefreshToken     string
	RefreshExpiresIn int64
	MFARequired      bool
}

// RefreshResult carries a new refresh token only when the session expiry
// was rotated.
type RefreshResult struct {
	AccessToken      string
	ExpiresIn        int64
	RefreshToken     string
	RefreshExpiresIn int64
	Rotated          bool
}
