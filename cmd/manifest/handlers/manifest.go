package handlers

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/resiflow/manifest/cmd/manifest/service"
	"github.com/resiflow/manifest/common/bootstrap"
)

// maxPhysicalDocumentBytes caps uploaded scan size at 20 MiB.
const maxPhysicalDocumentBytes = 20 << 20

// ManifestHandler handles manifest lineage and version operations
type ManifestHandler struct {
	components *bootstrap.Components
	manifests  *service.ManifestService
	amendments *service.AmendService
}

// NewManifestHandler creates a new manifest handler
func NewManifestHandler(components *bootstrap.Components, manifests *service.ManifestService, amendments *service.AmendService) *ManifestHandler {
	return &ManifestHandler{
		components: components,
		manifests:  manifests,
		amendments: amendments,
	}
}

// CreateLineage opens a new manifest lineage at version 1
// POST /api/v1/manifests
func (h *ManifestHandler) CreateLineage(c echo.Context) error {
	var req service.CreateLineageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	v, err := h.manifests.CreateLineage(c.Request().Context(), req)
	if err != nil {
		h.components.Logger.Error("failed to create lineage", "generator", req.Generator.Name, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, v)
}

// GetVersion returns a single manifest version
// GET /api/v1/manifests/:id
func (h *ManifestHandler) GetVersion(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid version id format")
	}

	v, err := h.manifests.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// GetLines returns the waste lines of a version in order
// GET /api/v1/manifests/:id/lines
func (h *ManifestHandler) GetLines(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid version id format")
	}

	lines, err := h.manifests.Lines(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, lines)
}

// ListLineage returns every version of a lineage, newest first
// GET /api/v1/lineages/:id/versions
func (h *ManifestHandler) ListLineage(c echo.Context) error {
	lineageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lineage id format")
	}

	versions, err := h.manifests.ListLineage(c.Request().Context(), lineageID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, versions)
}

// GetCurrent returns the current version of a lineage
// GET /api/v1/lineages/:id/current
func (h *ManifestHandler) GetCurrent(c echo.Context) error {
	lineageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lineage id format")
	}

	v, err := h.manifests.Current(c.Request().Context(), lineageID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// AmendDraft applies an RFC 6902 patch to a draft version header
// PATCH /api/v1/manifests/:id
func (h *ManifestHandler) AmendDraft(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid version id format")
	}

	patch, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read patch body")
	}

	v, err := h.amendments.AmendDraft(c.Request().Context(), id, patch)
	if err != nil {
		h.components.Logger.Error("failed to amend draft", "version_id", id, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// AttachPhysicalDocument stores a scanned document on the current version
// PUT /api/v1/manifests/:id/document
func (h *ManifestHandler) AttachPhysicalDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid version id format")
	}

	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "a document name is required")
	}

	doc, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPhysicalDocumentBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read document body")
	}
	if len(doc) > maxPhysicalDocumentBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "document exceeds the size limit")
	}

	if err := h.manifests.AttachPhysicalDocument(c.Request().Context(), id, doc, name); err != nil {
		h.components.Logger.Error("failed to attach document", "version_id", id, "error", err)
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
