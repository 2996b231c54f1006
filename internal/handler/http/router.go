package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vasiliy-maslov/portfolio-service/internal/project"
	"github.com/vasiliy-maslov/portfolio-service/internal/session"
	"github.com/vasiliy-maslov/portfolio-service/internal/user"
)

type RouterConfig struct {
	Users    user.Service
	Projects project.Service
	Sessions *session.Manager
	Uploader ImageUploader
	Cookie   CookieConfig

	CORSAllowedOrigin string
	// UploadsDir is served under /uploads/ when set.
	UploadsDir string
}

func NewRouter(cfg RouterConfig) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigin))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if cfg.UploadsDir != "" {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	router.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Sessions, cfg.Cookie))

		NewAuthHandler(cfg.Users, cfg.Sessions, cfg.Cookie).RegisterRoutes(r)
		NewProjectHandler(cfg.Projects).RegisterRoutes(r)
		if cfg.Uploader != nil {
			NewUploadHandler(cfg.Uploader).RegisterRoutes(r)
		}
	})

	return router
}
