package main

import (
	"net/http"
	"os"
	"time"

	"authgate/api/handler"
	apiMiddleware "authgate/api/middleware"
	"authgate/api/routes"
	"authgate/config"
	"authgate/internal/repository"
	"authgate/internal/service"
	"authgate/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	db, err := config.ConnectionDb(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}

	validate := validator.New()

	jwtManager := utils.JWTManager{
		AccessSecret:    []byte(cfg.JWTSecret),
		RefreshSecret:   []byte(cfg.JWTRefreshSecret),
		Issuer:          cfg.JWTIssuer,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	codeRepo := repository.NewVerificationCodeRepository(db)
	mfaRepo := repository.NewMFASecretRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)

	clock := service.RealClock{}
	sessionManager := service.NewSessionManager(sessionRepo, clock, cfg.RefreshTokenTTL, cfg.RefreshRotateWithin)
	codeRegistry := service.NewVerificationRegistry(codeRepo, clock)
	mfaManager := service.NewMFAManager(mfaRepo, service.NewTOTPProvider(cfg.MFAIssuer), clock, cfg.MFAIssuer)

	authService := service.NewAuthService(
		userRepo,
		securityRepo,
		sessionManager,
		codeRegistry,
		mfaManager,
		service.NewResendEmailSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppBaseURL),
		service.BcryptPasswordHasher{},
		service.JWTTokenIssuer{Manager: &jwtManager},
		clock,
		logger,
		service.AuthConfig{
			AccessTokenTTL:      cfg.AccessTokenTTL,
			RefreshTokenTTL:     cfg.RefreshTokenTTL,
			RefreshRotateWithin: cfg.RefreshRotateWithin,
			EmailCodeTTL:        cfg.EmailCodeTTL,
			ResetCodeTTL:        cfg.ResetCodeTTL,
			ResetRateWindow:     cfg.ResetRateWindow,
			ResetRateMax:        cfg.ResetRateMax,
			MFAIssuer:           cfg.MFAIssuer,
		},
	)

	authHandler := handler.NewAuthHandler(authService, validate)
	authHandler.CookieDomain = cfg.CookieDomain
	authHandler.SecureCookies = cfg.SecureCookies

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{JWT: &jwtManager}
	router := routes.NewRouter(app, authHandler, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
