package impact

import (
	"context"
	"net/http"

	"github.com/Triaksa-Space/youthspark-cms/domain/content"
	"github.com/Triaksa-Space/youthspark-cms/pkg/apperrors"
	"github.com/Triaksa-Space/youthspark-cms/pkg/collection"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *collection.Service
}

func NewHandler(svc *collection.Service) *Handler {
	return &Handler{svc: svc}
}

// GetHandler handles GET /api/impact.
func (h *Handler) GetHandler(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := collection.Read(ctx, h.svc, Stats)
	if err != nil {
		return apperrors.FromCollection(err)
	}
	testimonials, err := collection.Read(ctx, h.svc, Testimonials)
	if err != nil {
		return apperrors.FromCollection(err)
	}

	content.NoStore(c)
	return c.JSON(http.StatusOK, Page{Stats: stats, Testimonials: testimonials})
}

// UpdateHandler handles PUT /api/impact. Stats and testimonials are replaced
// together or not at all.
func (h *Handler) UpdateHandler(c echo.Context) error {
	req := new(Page)
	if err := content.Bind(c, req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if err := h.save(ctx, req); err != nil {
		return apperrors.FromCollection(err)
	}

	for i := range req.Stats {
		req.Stats[i].Position = i + 1
	}
	for i := range req.Testimonials {
		req.Testimonials[i].Position = i + 1
	}

	logger.FromContext(ctx).Info("Impact content updated",
		logger.Int("stats", len(req.Stats)),
		logger.Int("testimonials", len(req.Testimonials)),
	)
	return c.JSON(http.StatusOK, UpdateResponse{
		Message:      "Impact data updated successfully",
		Stats:        req.Stats,
		Testimonials: req.Testimonials,
	})
}

func (h *Handler) save(ctx context.Context, page *Page) error {
	if err := collection.Prepare(ctx, h.svc, "stats", page.Stats); err != nil {
		return err
	}
	if err := collection.Prepare(ctx, h.svc, "testimonials", page.Testimonials); err != nil {
		return err
	}

	return h.svc.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := collection.ReplaceTx(ctx, tx, Stats, page.Stats); err != nil {
			return err
		}
		_, err := collection.ReplaceTx(ctx, tx, Testimonials, page.Testimonials)
		return err
	})
}

// GetStatsHandler handles GET /api/impact/stats.
func (h *Handler) GetStatsHandler(c echo.Context) error {
	return content.ReadCollection(c, h.svc, Stats)
}

// UpdateStatsHandler handles PUT /api/impact/stats.
func (h *Handler) UpdateStatsHandler(c echo.Context) error {
	return content.ReplaceCollection(c, h.svc, Stats, "Stats updated successfully")
}

// GetTestimonialsHandler handles GET /api/impact/testimonials.
func (h *Handler) GetTestimonialsHandler(c echo.Context) error {
	return content.ReadCollection(c, h.svc, Testimonials)
}

// UpdateTestimonialsHandler handles PUT /api/impact/testimonials.
func (h *Handler) UpdateTestimonialsHandler(c echo.Context) error {
	return content.ReplaceCollection(c, h.svc, Testimonials, "Testimonials updated successfully")
}
