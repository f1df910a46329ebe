package integration

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/gpconnect"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/integrations/gpconnect", h.GetConfig)
	api.PUT("/integrations/gpconnect", h.SaveConfig)
	api.POST("/integrations/gpconnect/test", h.TestConnection)
}

func (h *Handler) GetConfig(c echo.Context) error {
	cfg, err := h.svc.Get(c.Request().Context())
	if err != nil {
		if errors.Is(err, gpconnect.ErrNotConfigured) {
			return echo.NewHTTPError(http.StatusNotFound, "integration not configured")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

// saveConfigRequest accepts the secret fields that the Config model never
// serializes back out.
type saveConfigRequest struct {
	Config
	ClientSecret  *string `json:"client_secret"`
	SigningKeyPEM string  `json:"signing_key_pem"`
}

func (h *Handler) SaveConfig(c echo.Context) error {
	var req saveConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cfg := req.Config
	cfg.ClientSecret = req.ClientSecret
	cfg.SigningKeyPEM = req.SigningKeyPEM

	if err := h.svc.Save(c.Request().Context(), &cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

func (h *Handler) TestConnection(c echo.Context) error {
	ok, err := h.svc.TestConnection(c.Request().Context())
	if err != nil {
		if errors.Is(err, gpconnect.ErrNotConfigured) {
			return echo.NewHTTPError(http.StatusNotFound, "integration not configured")
		}
		if errors.Is(err, gpconnect.ErrSigningKey) {
			return c.JSON(http.StatusOK, map[string]interface{}{"ok": false, "error": err.Error()})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ok": ok})
}
