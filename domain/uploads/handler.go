package uploads

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/casafind/casafind-server/internal/config"
	"github.com/casafind/casafind-server/internal/storage"
	"github.com/casafind/casafind-server/pkg/apperror"
	"github.com/casafind/casafind-server/pkg/logger"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Handler handles photo uploads to object storage.
type Handler struct {
	store *storage.Service
	cfg   *config.Config
	log   *slog.Logger
}

// NewHandler creates a new uploads handler
func NewHandler(store *storage.Service, cfg *config.Config, log *slog.Logger) *Handler {
	return &Handler{
		store: store,
		cfg:   cfg,
		log:   log.With(logger.Scope("uploads.handler")),
	}
}

// UploadedFile describes one stored photo.
type UploadedFile struct {
	Filename string `json:"filename"`
	Key      string `json:"key"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// UploadPhotos handles POST /api/uploads/photos. Accepts multipart form data
// with one or more files under the "photos" field.
func (h *Handler) UploadPhotos(c echo.Context) error {
	if !h.store.Enabled() {
		return apperror.ErrStorageUnavailable
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("multipart form data required").WithInternal(err)
	}
	files := form.File["photos"]
	if len(files) == 0 {
		return apperror.ErrBadRequest.WithMessage("at least one photo is required")
	}

	uploaded := make([]UploadedFile, 0, len(files))
	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedExtensions[ext] {
			return apperror.ErrBadRequest.WithMessage("unsupported file type: " + ext)
		}
		if fh.Size > h.cfg.Uploads.MaxSizeBytes {
			return apperror.ErrBadRequest.WithMessage("file exceeds the size limit: " + fh.Filename)
		}

		src, err := fh.Open()
		if err != nil {
			return apperror.ErrInternal.WithInternal(err)
		}

		key := storage.GeneratePhotoKey(fh.Filename)
		result, err := h.store.Upload(c.Request().Context(), key, src, fh.Size, storage.UploadOptions{
			ContentType: fh.Header.Get("Content-Type"),
		})
		src.Close()
		if err != nil {
			h.log.Error("photo upload failed", logger.Error(err), slog.String("filename", fh.Filename))
			return apperror.ErrInternal.WithMessage("upload failed").WithInternal(err)
		}

		uploaded = append(uploaded, UploadedFile{
			Filename: storage.SanitizeFilename(fh.Filename),
			Key:      result.Key,
			URL:      result.URL,
			Size:     result.Size,
		})
	}

	return c.JSON(http.StatusCreated, map[string]any{"files": uploaded})
}
