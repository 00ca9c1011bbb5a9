// Package app wires configuration, storage and the HTTP surface into a
// runnable service.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/campus-union/voicebox/internal/auth"
	"github.com/campus-union/voicebox/internal/config"
	"github.com/campus-union/voicebox/internal/db"
	"github.com/campus-union/voicebox/internal/httpapi"
	"github.com/campus-union/voicebox/internal/logging"
	"github.com/campus-union/voicebox/internal/mail"
	"github.com/campus-union/voicebox/internal/ratelimit"
	"github.com/campus-union/voicebox/internal/render"
	"github.com/campus-union/voicebox/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Migrate opens the database and applies the schema.
func Migrate(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	log.Info("database migration complete")
	return nil
}

// RunServer boots the service and blocks until ctx is cancelled.
func RunServer(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	submitLimiter, errLimiter := ratelimit.New(cfg.RedisAddr, cfg.RedisPassword, "voicebox:submit",
		cfg.SubmitLimitPerMinute, time.Minute)
	if errLimiter != nil {
		return errLimiter
	}
	loginLimiter, errLimiter := ratelimit.New(cfg.RedisAddr, cfg.RedisPassword, "voicebox:login",
		cfg.LoginLimitPer15Minutes, 15*time.Minute)
	if errLimiter != nil {
		return errLimiter
	}

	renderer := render.NewCardRenderer()
	defer func() {
		if errClose := renderer.Close(); errClose != nil {
			log.WithError(errClose).Warn("failed to close card renderer")
		}
	}()

	engine := httpapi.NewRouter(httpapi.Deps{
		DB:            conn,
		Config:        cfg,
		Messages:      store.NewMessageStore(conn),
		Analytics:     store.NewAnalyticsStore(conn),
		Guard:         auth.NewGuard(conn, cfg.AdminEmail, cfg.AdminPassword),
		Notifier:      mail.NewNotifier(&cfg.SMTP),
		Renderer:      renderer,
		SubmitLimiter: submitLimiter,
		LoginLimiter:  loginLimiter,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("listening on %s (env=%s, db=%s)", cfg.ListenAddr, cfg.Environment, db.DialectName(conn))
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			serveErr <- errServe
		}
	}()

	select {
	case errServe := <-serveErr:
		return errServe
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return errShutdown
	}
	return nil
}
