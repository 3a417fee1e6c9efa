package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/lingoleap/learning-api/internal/api"
	"github.com/lingoleap/learning-api/internal/api/handler"
	"github.com/lingoleap/learning-api/internal/core/service"
	mongostore "github.com/lingoleap/learning-api/internal/infrastructure/db/mongo"
	redisstore "github.com/lingoleap/learning-api/internal/infrastructure/db/redis"
	"github.com/lingoleap/learning-api/internal/infrastructure/queue"
	"github.com/lingoleap/learning-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Auth.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !cfg.IsProduction() {
		figure.NewFigure(appName, "cybermedium", true).Print()
		fmt.Println()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := connectMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL.Std(),
		RefreshTTL:    cfg.Auth.RefreshTTL.Std(),
	})
	if err != nil {
		return err
	}

	// The audit workers outlive the request context so they can drain after
	// the server stops accepting traffic.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewSessionDispatcher(cfg.Audit.Workers, mongostore.NewSessionEventRepository(db), logger.Component("audit"))
	dispatcher.Start(auditCtx)

	users := mongostore.NewUserRepository(db)
	authService := service.NewAuthService(users, tokens, service.AuthDeps{
		Throttle: redisstore.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow.Std()),
		Events:   dispatcher,
		HashCost: cfg.Auth.BcryptCost,
	}, logger.Component("auth"))
	userService := service.NewUserService(users, dispatcher, cfg.Auth.BcryptCost, logger.Component("users"))

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		UserService: userService,
		Tokens:      tokens,
		HealthChecks: map[string]handler.DependencyCheck{
			"mongodb": mongostore.HealthCheck(mongoClient),
			"redis":   redisstore.HealthCheck(rdb),
		},
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger.Component("http"),
	})

	serveErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		stopAudit()
		dispatcher.Wait()
		return fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	stopAudit()
	dispatcher.Wait()
	log.Info().Msg("server stopped")
	return nil
}
