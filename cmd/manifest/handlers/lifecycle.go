package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/cmd/manifest/service"
	"github.com/resiflow/manifest/common/bootstrap"
)

// LifecycleHandler handles status transitions of manifest versions
type LifecycleHandler struct {
	components *bootstrap.Components
	lifecycle  *service.LifecycleService
}

// NewLifecycleHandler creates a new lifecycle handler
func NewLifecycleHandler(components *bootstrap.Components, lifecycle *service.LifecycleService) *LifecycleHandler {
	return &LifecycleHandler{components: components, lifecycle: lifecycle}
}

// Confirm moves a draft version to confirmed
// POST /api/v1/manifests/:id/confirm
func (h *LifecycleHandler) Confirm(c echo.Context) error {
	return h.transition(c, h.lifecycle.Confirm)
}

// MarkInTransit moves a confirmed version to in_transit
// POST /api/v1/manifests/:id/transit
func (h *LifecycleHandler) MarkInTransit(c echo.Context) error {
	return h.transition(c, h.lifecycle.MarkInTransit)
}

// MarkDelivered moves an in-transit version to delivered
// POST /api/v1/manifests/:id/deliver
func (h *LifecycleHandler) MarkDelivered(c echo.Context) error {
	return h.transition(c, h.lifecycle.MarkDelivered)
}

// Cancel moves a non-terminal version to cancelled
// POST /api/v1/manifests/:id/cancel
func (h *LifecycleHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.lifecycle.Cancel)
}

func (h *LifecycleHandler) transition(c echo.Context, fn func(context.Context, uuid.UUID) (*models.ManifestVersion, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid version id format")
	}

	v, err := fn(c.Request().Context(), id)
	if err != nil {
		h.components.Logger.Error("status transition failed", "version_id", id, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}
