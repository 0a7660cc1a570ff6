package handler

import (
	"errors"
	"net/http"

	"authgate/api/middleware"
	"authgate/internal/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *AuthHandler) ListSessions(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	currentID := ""
	if sessionID, ok := middleware.SessionIDFromContext(c); ok {
		currentID = sessionID.String()
	}
	sessions, err := h.Service.ListSessions(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"sessions": dto.SessionResponsesFromEntities(sessions, currentID),
	})
}

func (h *AuthHandler) CurrentSession(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	user, err := h.Service.GetCurrentUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user": dto.UserResponseFromEntity(user),
	})
}

func (h *AuthHandler) RevokeSession(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid session id"))
	}
	if err := h.Service.RevokeSession(c.Request().Context(), sessionID, userID); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
