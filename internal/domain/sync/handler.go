package sync

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/domain/syncrun"
	"github.com/carelink/carelink/internal/platform/gpconnect"
	"github.com/carelink/carelink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/sync/medications", h.SyncMedications)
	api.POST("/patients/:id/sync/conditions", h.SyncConditions)
	api.GET("/patients/:id/sync-runs", h.ListRuns)
	api.GET("/sync-runs/:id", h.GetRun)
}

type syncRequest struct {
	NHSNumber string `json:"nhs_number"`
}

func (h *Handler) SyncMedications(c echo.Context) error {
	return h.sync(c, h.svc.SyncMedications)
}

func (h *Handler) SyncConditions(c echo.Context) error {
	return h.sync(c, h.svc.SyncConditions)
}

func (h *Handler) sync(c echo.Context, fn func(ctx context.Context, patientID uuid.UUID, nhsNumber string) (*syncrun.Run, error)) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.NHSNumber == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "nhs_number is required")
	}

	run, err := fn(c.Request().Context(), patientID, req.NHSNumber)
	if err != nil {
		return syncError(err)
	}
	return c.JSON(http.StatusOK, run)
}

// syncError maps the error taxonomy onto HTTP statuses: configuration
// problems are the caller's to fix (409), upstream failures are a bad
// gateway (502), everything else is internal.
func syncError(err error) error {
	if gpconnect.IsConfigurationError(err) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	var statusErr *gpconnect.StatusError
	if errors.As(err, &statusErr) {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) GetRun(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid run id")
	}
	run, err := h.svc.GetRun(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "sync run not found")
	}
	return c.JSON(http.StatusOK, run)
}

func (h *Handler) ListRuns(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRuns(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
