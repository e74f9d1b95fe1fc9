package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hongminglow/account-be/internal/auth"
	"github.com/hongminglow/account-be/internal/config"
	"github.com/hongminglow/account-be/internal/logger"
	"github.com/hongminglow/account-be/internal/mail"
	"github.com/hongminglow/account-be/internal/metrics"
	"github.com/hongminglow/account-be/internal/server"
	"github.com/hongminglow/account-be/internal/storage"
	"github.com/hongminglow/account-be/internal/storage/postgres"
	"github.com/hongminglow/account-be/internal/verification"
)

const shutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger.New(cfg.Log.Level, cfg.Log.Format))
		},
	}
}

func runServe(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	store, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	purger := storage.NewPurger(cfg.Verification.PurgeInterval, log)
	purger.Add("revoked_tokens", store.DeleteExpiredRevocations)

	var codes storage.CodeStore = store
	if cfg.Verification.Store == "memory" {
		mem := verification.NewMemoryStore(cfg.Verification.PurgeInterval)
		defer mem.Close()
		codes = mem
	} else {
		purger.Add("verification_codes", store.DeleteExpiredCodes)
	}

	var sender verification.Sender = mail.NewLogSender(log)
	if cfg.Mail.Mode == "smtp" {
		sender = mail.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.PreviousSecrets, cfg.JWT.Issuer, cfg.TokenTTL())
	srv := server.New(cfg, server.Deps{
		Users:         store,
		Verifier:      verification.NewService(codes, sender, cfg.Verification.CodeTTL, log),
		Authenticator: auth.NewAuthenticator(tokens, store),
		DB:            store,
		Metrics:       metrics.New(),
		Logger:        log,
	})

	go purger.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("account backend listening", "addr", cfg.HTTPAddress(), "verification_store", cfg.Verification.Store, "mail_mode", cfg.Mail.Mode)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("http server error", "error", err.Error())
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown error", "error", err.Error())
		return err
	}
	return nil
}
