package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/portfolio-service/internal/project"
	"github.com/vasiliy-maslov/portfolio-service/internal/session"
	"github.com/vasiliy-maslov/portfolio-service/internal/storage"
	"github.com/vasiliy-maslov/portfolio-service/internal/user"
)

var errEmptyBody = errors.New("request body is empty")

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithJSON encodes with HTML escaping on, so stored text is never emitted as live markup.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondWithValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
		return
	}

	log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "Internal validation error")
}

func formatValidationErrors(errs validator.ValidationErrors) []string {
	details := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("Field '%s' is required", field))
		case "email":
			details = append(details, fmt.Sprintf("Field '%s' must be a valid email address", field))
		case "min":
			details = append(details, fmt.Sprintf("Field '%s' must be at least %s characters long", field, fe.Param()))
		case "max":
			details = append(details, fmt.Sprintf("Field '%s' must be at most %s characters long", field, fe.Param()))
		case "url", "uri", "eq=|url", "eq=|uri":
			details = append(details, fmt.Sprintf("Field '%s' must be a valid URL", field))
		case "oneof":
			details = append(details, fmt.Sprintf("Field '%s' must be one of: %s", field, fe.Param()))
		case "datetime":
			details = append(details, fmt.Sprintf("Field '%s' must be a date in format %s", field, fe.Param()))
		case "timezone":
			details = append(details, fmt.Sprintf("Field '%s' must be a valid IANA timezone", field))
		case "gte":
			details = append(details, fmt.Sprintf("Field '%s' must be greater than or equal to %s", field, fe.Param()))
		default:
			details = append(details, fmt.Sprintf("Field '%s' failed on the '%s' rule", field, fe.Tag()))
		}
	}
	return details
}

// newValidator reports JSON field names instead of Go struct field names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// decodeJSON rejects unknown fields. An empty body yields errEmptyBody.
func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, session.ErrUnauthenticated),
		errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrNotFound), errors.Is(err, project.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, user.ErrEmptyPassword),
		errors.Is(err, storage.ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, project.ErrSlugExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// allowMethod writes a 405 envelope and returns false when r.Method is not listed.
func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}
