package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/resiflow/manifest/cmd/manifest/service"
	"github.com/resiflow/manifest/common/bootstrap"
)

// ReissueHandler handles copy-on-write re-issuance of manifest versions
type ReissueHandler struct {
	components *bootstrap.Components
	reissue    *service.ReissueService
}

// NewReissueHandler creates a new re-issuance handler
func NewReissueHandler(components *bootstrap.Components, reissue *service.ReissueService) *ReissueHandler {
	return &ReissueHandler{components: components, reissue: reissue}
}

type reissueRequest struct {
	// UseDocument archives a rendered document instead of a text dump
	UseDocument bool   `json:"use_document"`
	Actor       string `json:"actor"`
}

// Reissue archives the current version and opens a new draft in its place
// POST /api/v1/manifests/:id/reissue
func (h *ReissueHandler) Reissue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid version id format")
	}

	var req reissueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	v, err := h.reissue.Reissue(c.Request().Context(), id, req.UseDocument, req.Actor)
	if err != nil {
		h.components.Logger.Error("re-issuance failed", "version_id", id, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, v)
}
