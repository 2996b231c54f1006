package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const MaxImageSize = 5 << 20

var ErrInvalidFile = errors.New("invalid file")

var (
	allowedImageExtensions = map[string]struct{}{"jpg": {}, "jpeg": {}, "png": {}, "gif": {}}
	allowedImageTypes      = []string{"image/jpeg", "image/png", "image/gif"}
)

type invalidFileError struct {
	msg string
}

func (e invalidFileError) Error() string { return e.msg }

func (e invalidFileError) Is(target error) bool { return target == ErrInvalidFile }

type Image struct {
	URL         string
	Key         string
	Filename    string
	ContentType string
	Size        int64
}

type ImageUploader struct {
	store BlobStore
	now   func() time.Time
}

func NewImageUploader(store BlobStore) *ImageUploader {
	return &ImageUploader{store: store, now: time.Now}
}

// Upload checks extension, size and sniffed content type before storing the image
// under a fresh projects/ key.
func (u *ImageUploader) Upload(ctx context.Context, filename string, body io.Reader) (*Image, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return nil, invalidFileError{"only JPG, PNG and GIF images are allowed"}
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, invalidFileError{"file is empty"}
	}
	if len(data) > MaxImageSize {
		return nil, invalidFileError{"file is too large (max 5MB)"}
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		log.Warn().Str("filename", filename).Str("mime", detected.String()).Msg("storage: rejected upload content type")
		return nil, invalidFileError{"invalid file type"}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("storage: failed to generate file id: %w", err)
	}

	name := fmt.Sprintf("project_%d_%s.%s", u.now().Unix(), id, ext)
	key := "projects/" + name

	url, err := u.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), detected.String())
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("storage: failed to store image")
		return nil, err
	}

	log.Info().Str("key", key).Int("size", len(data)).Msg("storage: image stored")
	return &Image{
		URL:         url,
		Key:         key,
		Filename:    name,
		ContentType: detected.String(),
		Size:        int64(len(data)),
	}, nil
}
