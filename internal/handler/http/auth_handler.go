package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/portfolio-service/internal/session"
	"github.com/vasiliy-maslov/portfolio-service/internal/user"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Timezone  string `json:"timezone" validate:"omitempty,timezone"`
}

type LoginResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    *session.Claims `json:"user"`
}

type RegisteredUser struct {
	ID   int64  `json:"id"`
	UUID string `json:"uuid"`
}

type RegisterResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

type CheckResponse struct {
	Success       bool            `json:"success"`
	Authenticated bool            `json:"authenticated"`
	User          *session.Claims `json:"user,omitempty"`
}

type CurrentUserResponse struct {
	Success bool            `json:"success"`
	User    *session.Claims `json:"user"`
}

type AuthHandler struct {
	users    user.Service
	sessions *session.Manager
	cookie   CookieConfig
	validate *validator.Validate
}

func NewAuthHandler(users user.Service, sessions *session.Manager, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		cookie:   cookie,
		validate: newValidator(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.HandleFunc("/api/auth", h.handleAuth)
}

func (h *AuthHandler) handleAuth(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "login":
		if allowMethod(w, r, http.MethodPost) {
			h.handleLogin(w, r)
		}
	case "register":
		if allowMethod(w, r, http.MethodPost) {
			h.handleRegister(w, r)
		}
	case "logout":
		if allowMethod(w, r, http.MethodPost) {
			h.handleLogout(w, r)
		}
	case "check":
		if allowMethod(w, r, http.MethodGet) {
			h.handleCheck(w, r)
		}
	case "current_user":
		if allowMethod(w, r, http.MethodGet) {
			h.handleCurrentUser(w, r)
		}
	default:
		respondWithError(w, http.StatusBadRequest, "Action not specified")
	}
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode login request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	found, err := h.users.Login(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondWithError(w, statusCode, "Invalid email or password")
			return
		}
		log.Error().Err(err).Msg("Failed to log in via service")
		respondWithError(w, statusCode, "Login failed")
		return
	}

	// A fresh token on every login; any token the client already held is revoked.
	if old, err := r.Cookie(h.cookie.Name); err == nil && old.Value != "" {
		if err := h.sessions.Destroy(r.Context(), old.Value); err != nil {
			log.Warn().Err(err).Msg("Failed to revoke previous session")
		}
	}

	s, err := h.sessions.Create(r.Context(), session.NewClaims(found))
	if err != nil {
		log.Error().Err(err).Int64("user_id", found.ID).Msg("Failed to create session")
		respondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	setSessionCookie(w, h.cookie, s)
	claims := s.Claims
	respondWithJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Message: "Login successful",
		User:    &claims,
	})
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode register request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	created, err := h.users.Register(r.Context(), user.RegisterInput{
		FirstName: requestPayload.FirstName,
		LastName:  requestPayload.LastName,
		Email:     requestPayload.Email,
		Password:  requestPayload.Password,
		Timezone:  requestPayload.Timezone,
	})
	if err != nil {
		statusCode := mapErrorToStatusCode(err)
		if errors.Is(err, user.ErrEmailExists) {
			respondWithError(w, statusCode, "Email already exists")
			return
		}
		log.Error().Err(err).Msg("Failed to register user via service")
		respondWithError(w, statusCode, "Registration failed")
		return
	}

	respondWithJSON(w, http.StatusCreated, RegisterResponse{
		Success: true,
		Message: "Registration successful",
		User:    RegisteredUser{ID: created.ID, UUID: created.UUID.String()},
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookie.Name); err == nil && c.Value != "" {
		if err := h.sessions.Destroy(r.Context(), c.Value); err != nil {
			log.Error().Err(err).Msg("Failed to destroy session")
		}
	}

	clearSessionCookie(w, h.cookie)
	respondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Logout successful"})
}

func (h *AuthHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	authenticated, claims := session.Check(r.Context())
	respondWithJSON(w, http.StatusOK, CheckResponse{
		Success:       true,
		Authenticated: authenticated,
		User:          claims,
	})
}

func (h *AuthHandler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireSession(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, CurrentUserResponse{Success: true, User: claims})
}
