package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/portfolio-service/internal/storage"
)

const maxUploadRequestSize = storage.MaxImageSize + 1<<20

type ImageUploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*storage.Image, error)
}

type UploadedImage struct {
	MainImageURL string `json:"main_image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Filename     string `json:"filename"`
}

type UploadResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    UploadedImage `json:"data"`
}

type UploadHandler struct {
	uploader ImageUploader
}

func NewUploadHandler(uploader ImageUploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

func (h *UploadHandler) RegisterRoutes(router chi.Router) {
	router.HandleFunc("/api/upload", h.handleUpload)
}

func (h *UploadHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequestSize)
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondWithError(w, http.StatusBadRequest, "file is too large (max 5MB)")
			return
		}
		log.Warn().Err(err).Msg("Failed to parse multipart upload")
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > storage.MaxImageSize {
		respondWithError(w, http.StatusBadRequest, "file is too large (max 5MB)")
		return
	}

	img, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)
		if errors.Is(err, storage.ErrInvalidFile) {
			respondWithError(w, statusCode, err.Error())
			return
		}
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to store uploaded image")
		respondWithError(w, statusCode, "Failed to save file")
		return
	}

	respondWithJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "File uploaded successfully",
		Data: UploadedImage{
			MainImageURL: img.URL,
			ThumbnailURL: img.URL,
			Filename:     img.Filename,
		},
	})
}
