package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/portfolio-service/internal/project"
)

const (
	dateLayout         = "2006-01-02"
	maxPublicListLimit = 50
	maxAdminListLimit  = 100
)

// Flag is a boolean that also accepts 0 and 1, as sent by the admin front end.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "null":
		return nil
	case "true", "1":
		*f = true
	case "false", "0":
		*f = false
	default:
		return fmt.Errorf("invalid boolean value %s", data)
	}
	return nil
}

type CreateProjectRequest struct {
	Title            string   `json:"title" validate:"required,max=255"`
	ShortDescription string   `json:"short_description" validate:"required,max=500"`
	FullDescription  string   `json:"full_description" validate:"required"`
	Category         string   `json:"category" validate:"omitempty,max=50"`
	Technologies     []string `json:"technologies" validate:"omitempty,max=50,dive,required,max=100"`
	Features         []string `json:"features" validate:"omitempty,max=50,dive,required,max=255"`
	ThumbnailURL     string   `json:"thumbnail_url" validate:"omitempty,uri,max=500"`
	MainImageURL     string   `json:"main_image_url" validate:"omitempty,uri,max=500"`
	GithubURL        string   `json:"github_url" validate:"omitempty,url,max=500"`
	DemoURL          string   `json:"demo_url" validate:"omitempty,url,max=500"`
	ClientName       string   `json:"client_name" validate:"omitempty,max=255"`
	ProjectDate      string   `json:"project_date" validate:"omitempty,datetime=2006-01-02"`
	DisplayOrder     int      `json:"display_order" validate:"gte=0"`
	Featured         Flag     `json:"featured"`
	Status           string   `json:"status" validate:"omitempty,oneof=published draft"`
}

// UpdateProjectRequest mirrors project.Patch; absent fields stay nil.
type UpdateProjectRequest struct {
	ID               *int64    `json:"id" validate:"omitempty,gt=0"`
	Title            *string   `json:"title" validate:"omitempty,min=1,max=255"`
	ShortDescription *string   `json:"short_description" validate:"omitempty,min=1,max=500"`
	FullDescription  *string   `json:"full_description" validate:"omitempty,min=1"`
	Category         *string   `json:"category" validate:"omitempty,max=50"`
	Technologies     *[]string `json:"technologies" validate:"omitempty,max=50,dive,required,max=100"`
	Features         *[]string `json:"features" validate:"omitempty,max=50,dive,required,max=255"`
	ThumbnailURL     *string   `json:"thumbnail_url" validate:"omitempty,max=500,eq=|uri"`
	MainImageURL     *string   `json:"main_image_url" validate:"omitempty,max=500,eq=|uri"`
	GithubURL        *string   `json:"github_url" validate:"omitempty,max=500,eq=|url"`
	DemoURL          *string   `json:"demo_url" validate:"omitempty,max=500,eq=|url"`
	ClientName       *string   `json:"client_name" validate:"omitempty,max=255"`
	ProjectDate      *string   `json:"project_date" validate:"omitempty,datetime=2006-01-02"`
	DisplayOrder     *int      `json:"display_order" validate:"omitempty,gte=0"`
	Featured         *Flag     `json:"featured"`
	Status           *string   `json:"status" validate:"omitempty,oneof=published draft deleted"`
}

type DeleteProjectRequest struct {
	ID *int64 `json:"id" validate:"omitempty,gt=0"`
}

type ProjectResponse struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	ShortDescription string    `json:"short_description"`
	FullDescription  string    `json:"full_description"`
	Category         string    `json:"category"`
	Technologies     []string  `json:"technologies"`
	Features         []string  `json:"features"`
	ThumbnailURL     string    `json:"thumbnail_url"`
	MainImageURL     string    `json:"main_image_url"`
	GithubURL        string    `json:"github_url"`
	DemoURL          string    `json:"demo_url"`
	ClientName       string    `json:"client_name"`
	ProjectDate      string    `json:"project_date"`
	DisplayOrder     int       `json:"display_order"`
	Featured         bool      `json:"featured"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CreateProjectResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ProjectID int64  `json:"project_id"`
	Slug      string `json:"slug"`
}

type ProjectListResponse struct {
	Success  bool              `json:"success"`
	Projects []ProjectResponse `json:"projects"`
}

type ProjectDetailResponse struct {
	Success bool            `json:"success"`
	Project ProjectResponse `json:"project"`
}

func toProjectResponse(p project.Project) ProjectResponse {
	technologies := []string(p.Technologies)
	if technologies == nil {
		technologies = []string{}
	}
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}

	var projectDate string
	if !p.ProjectDate.IsZero() {
		projectDate = p.ProjectDate.Format(dateLayout)
	}

	return ProjectResponse{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		FullDescription:  p.FullDescription,
		Category:         p.Category,
		Technologies:     technologies,
		Features:         features,
		ThumbnailURL:     p.ThumbnailURL,
		MainImageURL:     p.MainImageURL,
		GithubURL:        p.GithubURL,
		DemoURL:          p.DemoURL,
		ClientName:       p.ClientName,
		ProjectDate:      projectDate,
		DisplayOrder:     p.DisplayOrder,
		Featured:         p.Featured,
		Status:           p.Status.String(),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type ProjectHandler struct {
	service  project.Service
	validate *validator.Validate
}

func NewProjectHandler(service project.Service) *ProjectHandler {
	return &ProjectHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *ProjectHandler) RegisterRoutes(router chi.Router) {
	router.HandleFunc("/api/projects", h.handleProjects)
}

func (h *ProjectHandler) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "public_list":
		if allowMethod(w, r, http.MethodGet) {
			h.handlePublicList(w, r)
		}
	case "get":
		if allowMethod(w, r, http.MethodGet) {
			h.handleGet(w, r)
		}
	case "list":
		if allowMethod(w, r, http.MethodGet) {
			h.handleList(w, r)
		}
	case "create":
		if allowMethod(w, r, http.MethodPost) {
			h.handleCreate(w, r)
		}
	case "update":
		if allowMethod(w, r, http.MethodPost, http.MethodPut) {
			h.handleUpdate(w, r)
		}
	case "delete":
		if allowMethod(w, r, http.MethodPost, http.MethodDelete) {
			h.handleDelete(w, r)
		}
	default:
		respondWithError(w, http.StatusBadRequest, "Action not specified")
	}
}

// parseLimit returns def when the limit parameter is absent.
func parseLimit(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > max {
		return 0, errors.New("invalid limit")
	}
	return limit, nil
}

func parseQueryID(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New("invalid project id")
	}
	return &id, nil
}

func (h *ProjectHandler) respondWithProjects(w http.ResponseWriter, projects []project.Project) {
	response := ProjectListResponse{Success: true, Projects: make([]ProjectResponse, 0, len(projects))}
	for _, p := range projects {
		response.Projects = append(response.Projects, toProjectResponse(p))
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *ProjectHandler) handlePublicList(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, project.DefaultPublishedLimit, maxPublicListLimit)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	projects, err := h.service.ListPublished(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list published projects via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list projects")
		return
	}

	h.respondWithProjects(w, projects)
}

func (h *ProjectHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	limit, err := parseLimit(r, project.DefaultAdminLimit, maxAdminListLimit)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	projects, err := h.service.ListAll(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list projects via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list projects")
		return
	}

	h.respondWithProjects(w, projects)
}

func (h *ProjectHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		respondWithError(w, http.StatusBadRequest, "Slug parameter is required")
		return
	}

	found, err := h.service.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)
		if errors.Is(err, project.ErrNotFound) {
			respondWithError(w, statusCode, "Project not found")
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("Failed to get project via service")
		respondWithError(w, statusCode, "Failed to get project")
		return
	}

	respondWithJSON(w, http.StatusOK, ProjectDetailResponse{Success: true, Project: toProjectResponse(*found)})
}

func (h *ProjectHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireSession(w, r)
	if !ok {
		return
	}

	var requestPayload CreateProjectRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode create project request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	input := project.CreateInput{
		Title:            requestPayload.Title,
		ShortDescription: requestPayload.ShortDescription,
		FullDescription:  requestPayload.FullDescription,
		Category:         requestPayload.Category,
		Technologies:     requestPayload.Technologies,
		Features:         requestPayload.Features,
		ThumbnailURL:     requestPayload.ThumbnailURL,
		MainImageURL:     requestPayload.MainImageURL,
		GithubURL:        requestPayload.GithubURL,
		DemoURL:          requestPayload.DemoURL,
		ClientName:       requestPayload.ClientName,
		DisplayOrder:     requestPayload.DisplayOrder,
		Featured:         bool(requestPayload.Featured),
		Status:           project.Status(requestPayload.Status),
	}
	if requestPayload.ProjectDate != "" {
		date, _ := time.Parse(dateLayout, requestPayload.ProjectDate)
		input.ProjectDate = &date
	}

	created, err := h.service.CreateProject(r.Context(), input)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)
		if errors.Is(err, project.ErrSlugExists) {
			respondWithError(w, statusCode, "A project with this slug already exists")
			return
		}
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to create project via service")
		respondWithError(w, statusCode, "Failed to create project")
		return
	}

	respondWithJSON(w, http.StatusCreated, CreateProjectResponse{
		Success:   true,
		Message:   "Project created successfully",
		ProjectID: created.ID,
		Slug:      created.Slug,
	})
}

func (h *ProjectHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	queryID, err := parseQueryID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	var requestPayload UpdateProjectRequest
	if err := decodeJSON(r, &requestPayload); err != nil && !errors.Is(err, errEmptyBody) {
		log.Warn().Err(err).Msg("Failed to decode update project request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	id := queryID
	if id == nil {
		id = requestPayload.ID
	}
	if id == nil {
		respondWithError(w, http.StatusBadRequest, "Project id is required")
		return
	}

	patch := requestPayload.toPatch()
	if patch.IsEmpty() {
		respondWithError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	if _, err := h.service.UpdateProject(r.Context(), *id, patch); err != nil {
		statusCode := mapErrorToStatusCode(err)
		switch {
		case errors.Is(err, project.ErrNotFound):
			respondWithError(w, statusCode, "Project not found")
		case errors.Is(err, project.ErrSlugExists):
			respondWithError(w, statusCode, "A project with this slug already exists")
		default:
			log.Error().Err(err).Int64("project_id", *id).Msg("Failed to update project via service")
			respondWithError(w, statusCode, "Failed to update project")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Project updated successfully"})
}

func (req UpdateProjectRequest) toPatch() project.Patch {
	patch := project.Patch{
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		FullDescription:  req.FullDescription,
		Category:         req.Category,
		Technologies:     req.Technologies,
		Features:         req.Features,
		ThumbnailURL:     req.ThumbnailURL,
		MainImageURL:     req.MainImageURL,
		GithubURL:        req.GithubURL,
		DemoURL:          req.DemoURL,
		ClientName:       req.ClientName,
		DisplayOrder:     req.DisplayOrder,
	}
	if req.Featured != nil {
		featured := bool(*req.Featured)
		patch.Featured = &featured
	}
	if req.ProjectDate != nil {
		date, _ := time.Parse(dateLayout, *req.ProjectDate)
		patch.ProjectDate = &date
	}
	if req.Status != nil {
		status := project.Status(*req.Status)
		patch.Status = &status
	}
	return patch
}

func (h *ProjectHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	id, err := parseQueryID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	if id == nil {
		var requestPayload DeleteProjectRequest
		if err := decodeJSON(r, &requestPayload); err != nil && !errors.Is(err, errEmptyBody) {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if err := h.validate.Struct(requestPayload); err != nil {
			respondWithValidationError(w, err)
			return
		}
		id = requestPayload.ID
	}
	if id == nil {
		respondWithError(w, http.StatusBadRequest, "Project id is required")
		return
	}

	if err := h.service.DeleteProject(r.Context(), *id); err != nil {
		statusCode := mapErrorToStatusCode(err)
		if errors.Is(err, project.ErrNotFound) {
			respondWithError(w, statusCode, "Project not found")
			return
		}
		log.Error().Err(err).Int64("project_id", *id).Msg("Failed to delete project via service")
		respondWithError(w, statusCode, "Failed to delete project")
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Project deleted successfully"})
}
