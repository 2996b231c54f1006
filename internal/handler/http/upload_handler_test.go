package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/portfolio-service/internal/storage"
)

func newUploadRequest(t *testing.T, filename string, content []byte, cookie *http.Cookie) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, "image", filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestUploadHandler_Success(t *testing.T) {
	env := newTestEnv(t)

	env.uploader.On("Upload", mock.Anything, "shot.png", mock.Anything).Return(&storage.Image{
		URL:      "/uploads/projects/project_1700000000_abc.png",
		Filename: "project_1700000000_abc.png",
	}, nil).Once()

	rr := serve(env, newUploadRequest(t, "shot.png", []byte("\x89PNG\r\n\x1a\n"), env.login(t)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"success": true,
		"message": "File uploaded successfully",
		"data": {
			"main_image_url": "/uploads/projects/project_1700000000_abc.png",
			"thumbnail_url": "/uploads/projects/project_1700000000_abc.png",
			"filename": "project_1700000000_abc.png"
		}
	}`, rr.Body.String())
	env.uploader.AssertExpectations(t)
}

func TestUploadHandler_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env, newUploadRequest(t, "shot.png", []byte("data"), nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	env.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadHandler_InvalidFile(t *testing.T) {
	env := newTestEnv(t)

	env.uploader.On("Upload", mock.Anything, "note.png", mock.Anything).
		Return(nil, invalidFile("invalid file type")).Once()

	rr := serve(env, newUploadRequest(t, "note.png", []byte("text"), env.login(t)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"invalid file type"}`, rr.Body.String())
}

func TestUploadHandler_MissingFile(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, "other", "shot.png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(env.login(t))

	rr := serve(env, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"No file uploaded"}`, rr.Body.String())
}

func TestUploadHandler_WrongMethod(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodGet, "/api/upload", "", env.login(t))
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

type invalidFile string

func (e invalidFile) Error() string { return string(e) }

func (e invalidFile) Is(target error) bool { return target == storage.ErrInvalidFile }
