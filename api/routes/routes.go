package routes

import (
	"time"

	"authgate/api/handler"
	"authgate/api/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware middleware.AuthMiddleware) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.POST("/auth/register", r.Auth.Register, r.AuthRate.Middleware())
	e.POST("/auth/verify-email", r.Auth.VerifyEmail, r.AuthRate.Middleware())
	e.POST("/auth/login", r.Auth.Login, r.LoginRate.Middleware())
	e.POST("/auth/mfa/login", r.Auth.VerifyMFALogin, r.LoginRate.Middleware())
	e.POST("/auth/refresh", r.Auth.Refresh, r.AuthRate.Middleware())
	e.POST("/auth/logout", r.Auth.Logout, r.AuthMiddleware.RequireAuth)
	e.POST("/auth/password/forgot", r.Auth.PasswordForgot, r.LoginRate.Middleware())
	e.POST("/auth/password/reset", r.Auth.PasswordReset, r.AuthRate.Middleware())

	e.POST("/mfa/setup", r.Auth.MFASetup, r.AuthMiddleware.RequireAuth)
	e.POST("/mfa/confirm", r.Auth.MFAConfirm, r.AuthMiddleware.RequireAuth)
	e.POST("/mfa/revoke", r.Auth.MFARevoke, r.AuthMiddleware.RequireAuth)

	e.GET("/sessions", r.Auth.ListSessions, r.AuthMiddleware.RequireAuth)
	e.GET("/sessions/current", r.Auth.CurrentSession, r.AuthMiddleware.RequireAuth)
	e.DELETE("/sessions/:id", r.Auth.RevokeSession, r.AuthMiddleware.RequireAuth)
}
