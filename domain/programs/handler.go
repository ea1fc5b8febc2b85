package programs

import (
	"github.com/Triaksa-Space/youthspark-cms/domain/content"
	"github.com/Triaksa-Space/youthspark-cms/pkg/collection"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *collection.Service
}

func NewHandler(svc *collection.Service) *Handler {
	return &Handler{svc: svc}
}

// GetHandler handles GET /api/programs.
func (h *Handler) GetHandler(c echo.Context) error {
	return content.ReadCollection(c, h.svc, Programs)
}

// UpdateHandler handles PUT /api/programs.
func (h *Handler) UpdateHandler(c echo.Context) error {
	return content.ReplaceCollection(c, h.svc, Programs, "Programs updated successfully")
}
