package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sga-edu/sgaauth/internal/db"
	"github.com/sga-edu/sgaauth/internal/handlers"
	"github.com/sga-edu/sgaauth/internal/logger"
	"github.com/sga-edu/sgaauth/internal/repository/postgres"
	"github.com/sga-edu/sgaauth/internal/service/auth"
	"github.com/sga-edu/sgaauth/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
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

	// Purge ledger records whose veto window already closed
	// One shot at boot, the service itself runs no background tasks
	purged, err := storage.InvalidTokens().DeleteExpired(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("error while purging expired tokens. Err: %w", err)
	}
	log.Info("purged expired invalidated tokens", "count", purged)

	// Initialize services
	authService, err := auth.NewService(
		auth.Config{SecretKey: c.SecretKey, TokenTTL: c.TokenTTL},
		storage.Users(),
		storage.InvalidTokens(),
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService := user.NewService(storage.Users(), nil)

	mux := handlers.NewRouter(authService, userService, log)

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
