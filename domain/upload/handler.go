package upload

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Triaksa-Space/youthspark-cms/pkg/apperrors"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/Triaksa-Space/youthspark-cms/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// FormField is the multipart field carrying the image.
const FormField = "image"

// DefaultMaxBytes caps one image.
const DefaultMaxBytes int64 = 5 * 1024 * 1024

var allowed = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
}

// Response carries the address of the stored image.
type Response struct {
	ImageURL string `json:"imageUrl"`
}

// Config of the upload handler.
type Config struct {
	MaxBytes int64
	// BaseURL prefixes site-relative results from the disk store. Empty means
	// the scheme and host of the request.
	BaseURL string
}

type Handler struct {
	store storage.Store
	cfg   Config
}

func NewHandler(store storage.Store, cfg Config) *Handler {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Handler{store: store, cfg: cfg}
}

// UploadHandler handles POST /api/upload.
func (h *Handler) UploadHandler(c echo.Context) error {
	log := logger.FromContext(c.Request().Context()).WithComponent("upload")

	fh, err := c.FormFile(FormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "No file uploaded")
		}
		log.Warn("Failed to read multipart form", logger.Err(err))
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Invalid upload request")
	}
	if fh.Size > h.cfg.MaxBytes {
		return apperrors.NewRequestEntityTooLarge(apperrors.ErrCodeFileTooLarge, "File too large, the limit is 5MB")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	mimes, ok := allowed[ext]
	if !ok {
		return invalidType()
	}

	file, err := fh.Open()
	if err != nil {
		return apperrors.NewInternal(apperrors.ErrCodeUploadFailed, "Failed to upload image", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return apperrors.NewInternal(apperrors.ErrCodeUploadFailed, "Failed to upload image", err)
	}
	if !mtype.Is(mimes[0]) {
		log.Warn("Invalid file type", logger.String("mime", mtype.String()), logger.String("ext", ext))
		return invalidType()
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return apperrors.NewInternal(apperrors.ErrCodeUploadFailed, "Failed to upload image", err)
	}

	key := uuid.NewString() + ext
	location, err := h.store.Save(c.Request().Context(), key, mimes[0], file, fh.Size)
	if err != nil {
		return apperrors.NewInternal(apperrors.ErrCodeUploadFailed, "Failed to upload image", err)
	}

	imageURL := location
	if strings.HasPrefix(location, "/") {
		imageURL = h.baseURL(c) + location
	}

	log.Info("Image uploaded", logger.Backend(h.store.Name()), logger.String("key", key), logger.Int64("bytes", fh.Size))
	return c.JSON(http.StatusOK, Response{ImageURL: imageURL})
}

func (h *Handler) baseURL(c echo.Context) string {
	if h.cfg.BaseURL != "" {
		return h.cfg.BaseURL
	}
	return c.Scheme() + "://" + c.Request().Host
}

func invalidType() error {
	return apperrors.NewBadRequest(apperrors.ErrCodeInvalidFormat, "Only JPEG/PNG images are allowed")
}
