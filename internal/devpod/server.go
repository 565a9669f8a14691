// Package devpod is a small pod server for local development and end-to-end
// tests: it serves resource metadata with ACL links and stores ACL documents
// in sqlite, speaking the same wire encoding as the pod client.
package devpod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/itme/solidacl/internal/store"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:3080".
	Addr string

	// BaseURL is the external URL resources are addressed under. Seeded ACL
	// targets are minted against it.
	BaseURL string

	// DBPath is the sqlite path, ":memory:" by default.
	DBPath string

	// SeedFile optionally points to a YAML fixture loaded at startup.
	SeedFile string
}

type Server struct {
	config *Config
	store  *store.Store
	server *http.Server
}

func New(config *Config) (*Server, error) {
	if config.DBPath == "" {
		config.DBPath = ":memory:"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://" + config.Addr
	}

	dbOpts := []store.SqliteOption{store.WithPath(config.DBPath)}
	if config.DBPath == ":memory:" {
		// every pool connection would open its own empty in-memory database
		dbOpts = append(dbOpts, store.WithMaxOpenConns(1))
	}
	db, err := store.NewSqliteDb(dbOpts...)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	st, err := store.New(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}

	s := &Server{
		config: config,
		store:  st,
	}
	s.server = &http.Server{
		Addr:    config.Addr,
		Handler: s.buildRouter(),
	}
	return s, nil
}

func (s *Server) buildRouter() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		sloggin.New(slog.Default()),
		gin.Recovery(),
		cors.Default(),
	)
	router.Any("/*path", s.handle)
	return router
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Store exposes the backing store for seeding and tests.
func (s *Server) Store() *store.Store {
	return s.store
}

func (s *Server) Start(ctx context.Context) error {
	if s.config.SeedFile != "" {
		if err := SeedFromFile(ctx, s.store, s.config.BaseURL, s.config.SeedFile); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	slog.Info("devpod start", "addr", s.config.Addr, "base_url", s.config.BaseURL, "db", s.config.DBPath)
	defer slog.Info("devpod stop")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
