package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/campuscoin/api/internal/db"
	"github.com/campuscoin/api/internal/handlers"
	"github.com/campuscoin/api/internal/logger"
	"github.com/campuscoin/api/internal/repository/postgres"
	"github.com/campuscoin/api/internal/service/auth"
	"github.com/campuscoin/api/internal/service/challenge"
	"github.com/campuscoin/api/internal/service/ledger"
	"github.com/campuscoin/api/internal/service/shop"
	"github.com/campuscoin/api/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	userService := user.NewService(storage)
	ledgerService := ledger.NewService(storage)
	shopService := shop.NewService(storage)
	challengeService := challenge.NewService(storage)

	keys := auth.NewKeySet(c.IdentityIssuer, 0)
	verifier := auth.NewIdentityVerifier(c.IdentityIssuer, keys)
	tokenManager := auth.NewTokenManager(c.SecretKey, auth.DefaultSessionTTL)
	authService, err := auth.NewService(verifier, tokenManager, userService)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	mux := handlers.NewRouter(
		authService,
		ledgerService,
		userService,
		shopService,
		challengeService,
		c.WebhookSecret,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
