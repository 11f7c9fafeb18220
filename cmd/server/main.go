package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"bscf_accounts/internal/config"
	"bscf_accounts/internal/logger"
	"bscf_accounts/internal/middleware"
	"bscf_accounts/internal/routes"
	"bscf_accounts/internal/services"
	"bscf_accounts/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	// Initialize structured logging to file
	logger.Setup(cfg.LogLevel, cfg.LogFile)
	gin.SetMode(cfg.GinMode)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.AppEnv}); err != nil {
			logrus.WithError(err).Warn("sentry disabled")
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database initialization failed")
	}
	txOpts, err := cfg.TxOptions()
	if err != nil {
		logrus.WithError(err).Fatal("invalid transaction settings")
	}

	tokens := token.NewService(cfg.JWTSecret, cfg.TokenTTL)
	r := routes.SetupRouter(routes.Deps{
		DB:            db,
		Tokens:        tokens,
		Registrations: services.NewRegistrationService(db, txOpts),
		Auth:          services.NewAuthService(db, tokens),
		Roles:         services.NewRoleService(db, txOpts),
		Profiles:      services.NewProfileService(db),
		Users:         services.NewUserService(db),
		AccessLog:     logger.AccessWriter(cfg.AccessLogFile),
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           middleware.EnableCORS(r, cfg.CORSOrigins, cfg.GinMode == gin.ReleaseMode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("server running at :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	logrus.Info("server exited")
}
