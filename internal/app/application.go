// Package app wires the journal's components and manages the HTTP server
// lifecycle.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillhub/journal/internal/auth"
	"github.com/quillhub/journal/internal/config"
	"github.com/quillhub/journal/internal/logging"
	"github.com/quillhub/journal/internal/markup"
	"github.com/quillhub/journal/internal/metrics"
	"github.com/quillhub/journal/internal/platform/database"
	"github.com/quillhub/journal/internal/platform/migrations"
	"github.com/quillhub/journal/internal/web"
)

// Application owns the wired dependencies and the HTTP server.
type Application struct {
	cfg    *config.Config
	log    *logging.Logger
	server *http.Server
	db     *sql.DB
}

// New constructs the application: opens the database, applies migrations,
// and assembles the router with its middleware stack.
func New(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Application, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrations.Apply(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	adminHash, err := resolveAdminHash(cfg.Session)
	if err != nil {
		db.Close()
		return nil, err
	}
	authMgr := auth.NewManager(cfg.Session.Secret, cfg.Session.AdminUser, adminHash)

	handler, err := web.New(log, authMgr, markup.NewRenderer())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build handler: %w", err)
	}

	m := metrics.New()

	router := mux.NewRouter()
	router.Use(web.RequestLogging(log), web.MetricsMiddleware(m))
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", handler.Healthz).Methods(http.MethodGet)

	// Everything below runs inside a per-request transaction.
	pages := router.PathPrefix("/").Subrouter()
	pages.Use(web.Transactional(db, log))
	handler.Register(pages)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Application{
		cfg:    cfg,
		log:    log,
		server: server,
		db:     db,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.Infof("journal listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := a.db.Close(); err != nil {
		a.log.WithError(err).Warn("error closing database connection")
	}
	return nil
}

// resolveAdminHash prefers the configured bcrypt hash; without one it
// derives a hash from the development password so local logins work.
func resolveAdminHash(cfg config.SessionConfig) ([]byte, error) {
	if cfg.AdminHash != "" {
		return []byte(cfg.AdminHash), nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return hash, nil
}
