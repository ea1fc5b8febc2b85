package about

import (
	"context"
	"errors"
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

// GetHandler handles GET /api/about. A missing About row reads as empty copy.
func (h *Handler) GetHandler(c echo.Context) error {
	ctx := c.Request().Context()

	rec, err := collection.Get(ctx, h.svc, Record)
	if err != nil && !errors.Is(err, collection.ErrNotFound) {
		return apperrors.FromCollection(err)
	}
	mission, err := collection.Read(ctx, h.svc, MissionPoints)
	if err != nil {
		return apperrors.FromCollection(err)
	}
	history, err := collection.Read(ctx, h.svc, HistoryPoints)
	if err != nil {
		return apperrors.FromCollection(err)
	}

	content.NoStore(c)
	return c.JSON(http.StatusOK, Page{About: rec, MissionPoints: mission, HistoryPoints: history})
}

// UpdateHandler handles PUT /api/about. The record and both lists are written
// in one transaction.
func (h *Handler) UpdateHandler(c echo.Context) error {
	req := new(Page)
	if err := content.Bind(c, req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if err := h.save(ctx, req); err != nil {
		return apperrors.FromCollection(err)
	}

	logger.FromContext(ctx).Info("About content updated",
		logger.Int("mission_points", len(req.MissionPoints)),
		logger.Int("history_points", len(req.HistoryPoints)),
	)
	return c.JSON(http.StatusOK, content.MessageResponse{Message: "About data updated successfully"})
}

func (h *Handler) save(ctx context.Context, page *Page) error {
	if err := collection.PrepareOne(ctx, h.svc, "", &page.About); err != nil {
		return err
	}
	if err := collection.Prepare(ctx, h.svc, "missionPoints", page.MissionPoints); err != nil {
		return err
	}
	if err := collection.Prepare(ctx, h.svc, "historyPoints", page.HistoryPoints); err != nil {
		return err
	}

	return h.svc.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := collection.UpsertTx(ctx, tx, Record, page.About); err != nil {
			return err
		}
		if _, err := collection.ReplaceTx(ctx, tx, MissionPoints, page.MissionPoints); err != nil {
			return err
		}
		_, err := collection.ReplaceTx(ctx, tx, HistoryPoints, page.HistoryPoints)
		return err
	})
}

// GetMissionPointsHandler handles GET /api/about/mission-points.
func (h *Handler) GetMissionPointsHandler(c echo.Context) error {
	return content.ReadCollection(c, h.svc, MissionPoints)
}

// UpdateMissionPointsHandler handles PUT /api/about/mission-points.
func (h *Handler) UpdateMissionPointsHandler(c echo.Context) error {
	return content.ReplaceCollection(c, h.svc, MissionPoints, "Mission points updated successfully")
}

// GetHistoryPointsHandler handles GET /api/about/history-points.
func (h *Handler) GetHistoryPointsHandler(c echo.Context) error {
	return content.ReadCollection(c, h.svc, HistoryPoints)
}

// UpdateHistoryPointsHandler handles PUT /api/about/history-points.
func (h *Handler) UpdateHistoryPointsHandler(c echo.Context) error {
	return content.ReplaceCollection(c, h.svc, HistoryPoints, "History points updated successfully")
}
