package service

import (
	"time"

	"authgate/internal/utils"

	"github.com/google/uuid"
)

// JWTTokenIssuer adapts the jwt manager to the TokenIssuer interface the
// orchestrator depends on.
type JWTTokenIssuer struct {
	Manager *utils.JWTManager
}

func (j JWTTokenIssuer) IssueAccessToken(userID uuid.UUID, sessionID uuid.UUID) (string, time.Duration, error) {
	if j.Manager == nil {
		return "", 0, ErrUnauthorized
	}
	return j.Manager.IssueAccessToken(userID.String(), sessionID.String())
}

func (j JWTTokenIssuer) IssueRefreshToken(sessionID uuid.UUID) (string, time.Duration, error) {
	if j.Manager == nil {
		return "", 0, ErrUnauthorized
	}
	return j.Manager.IssueRefreshToken(sessionID.String())
}

func (j JWTTokenIssuer) ParseRefreshToken(token string) (uuid.UUID, error) {
	if j.Manager == nil {
		return uuid.Nil, ErrUnauthorized
	}
	sessionID, err := j.Manager.ParseRefreshToken(token)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}
