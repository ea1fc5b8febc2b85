package home

import (
	"errors"
	"net/http"

	"github.com/Triaksa-Space/youthspark-cms/domain/content"
	"github.com/Triaksa-Space/youthspark-cms/pkg/apperrors"
	"github.com/Triaksa-Space/youthspark-cms/pkg/collection"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc          *collection.Service
	defaultImage string
}

// NewHandler returns the home handlers. defaultImage is served when no hero
// image has been saved yet.
func NewHandler(svc *collection.Service, defaultImage string) *Handler {
	return &Handler{svc: svc, defaultImage: defaultImage}
}

// GetHandler handles GET /api/home. A site that was never edited gets empty
// text and the default hero image instead of a 404.
func (h *Handler) GetHandler(c echo.Context) error {
	rec, err := collection.Get(c.Request().Context(), h.svc, Record)
	if err != nil && !errors.Is(err, collection.ErrNotFound) {
		return apperrors.FromCollection(err)
	}
	if rec.ImageURL == "" {
		rec.ImageURL = h.defaultImage
	}
	content.NoStore(c)
	return c.JSON(http.StatusOK, rec)
}

// UpdateHandler handles PUT /api/home.
func (h *Handler) UpdateHandler(c echo.Context) error {
	req := new(Home)
	if err := content.Bind(c, req); err != nil {
		return err
	}
	if err := collection.Upsert(c.Request().Context(), h.svc, Record, req); err != nil {
		return apperrors.FromCollection(err)
	}
	return c.JSON(http.StatusOK, content.MessageResponse{Message: "Homepage content updated successfully"})
}
