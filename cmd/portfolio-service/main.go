package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/portfolio-service/internal/config"
	"github.com/vasiliy-maslov/portfolio-service/internal/db"
	portfolioHttp "github.com/vasiliy-maslov/portfolio-service/internal/handler/http"
	"github.com/vasiliy-maslov/portfolio-service/internal/project"
	"github.com/vasiliy-maslov/portfolio-service/internal/session"
	"github.com/vasiliy-maslov/portfolio-service/internal/storage"
	"github.com/vasiliy-maslov/portfolio-service/internal/user"
)

func setupLogger(cfg config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.Name).Logger()
}

func newSessionStore(cfg config.SessionConfig, pg *db.Postgres) session.Store {
	if cfg.Store == "memory" {
		log.Warn().Msg("Using in-memory session store; sessions are lost on restart")
		return session.NewMemoryStore()
	}
	return session.NewPostgresStore(pg.DB)
}

func newBlobStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, string, error) {
	if cfg.Backend == "s3" {
		store, err := storage.NewS3Store(ctx, cfg)
		return store, "", err
	}
	store, err := storage.NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg.App)
	log.Info().Msg("Portfolio service starting...")

	ctx := context.Background()

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if cfg.Postgres.AutoMigrate {
		if err := pg.MigrateUp(); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	blobStore, uploadsDir, err := newBlobStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("Failed to initialize blob store")
	}

	userSvc := user.NewService(user.NewRepository(pg.DB))
	projectSvc := project.NewService(project.NewRepository(pg.DB))
	sessions := session.NewManager(newSessionStore(cfg.Session, pg), cfg.Session.TTL)

	router := portfolioHttp.NewRouter(portfolioHttp.RouterConfig{
		Users:    userSvc,
		Projects: projectSvc,
		Sessions: sessions,
		Uploader: storage.NewImageUploader(blobStore),
		Cookie: portfolioHttp.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
		CORSAllowedOrigin: cfg.App.CORSAllowedOrigin,
		UploadsDir:        uploadsDir,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Portfolio service stopped gracefully")
}
