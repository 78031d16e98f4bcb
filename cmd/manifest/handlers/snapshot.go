package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/resiflow/manifest/cmd/manifest/service"
	"github.com/resiflow/manifest/common/bootstrap"
)

// SnapshotHandler serves archived version snapshots
type SnapshotHandler struct {
	components *bootstrap.Components
	snapshots  *service.SnapshotService
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(components *bootstrap.Components, snapshots *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{components: components, snapshots: snapshots}
}

// ListByLineage returns the snapshot history of a lineage, newest first
// GET /api/v1/lineages/:id/snapshots
func (h *SnapshotHandler) ListByLineage(c echo.Context) error {
	lineageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lineage id format")
	}

	snaps, err := h.snapshots.ListByLineage(c.Request().Context(), lineageID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, snaps)
}

// GetSnapshot returns snapshot metadata by id
// GET /api/v1/snapshots/:id
func (h *SnapshotHandler) GetSnapshot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid snapshot id format")
	}

	snap, err := h.snapshots.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

// DeleteSnapshot removes a non-origin snapshot
// DELETE /api/v1/snapshots/:id
func (h *SnapshotHandler) DeleteSnapshot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid snapshot id format")
	}

	if err := h.snapshots.Delete(c.Request().Context(), id); err != nil {
		h.components.Logger.Error("failed to delete snapshot", "snapshot_id", id, "error", err)
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DownloadArtifact streams the archived artifact as an attachment
// GET /api/v1/snapshots/:id/artifact
func (h *SnapshotHandler) DownloadArtifact(c echo.Context) error {
	return h.serveArtifact(c, true)
}

// ViewArtifact streams the archived artifact for inline display
// GET /api/v1/snapshots/:id/artifact/view
func (h *SnapshotHandler) ViewArtifact(c echo.Context) error {
	return h.serveArtifact(c, false)
}

// DownloadPhysicalDocument streams the scanned document archived with a snapshot
// GET /api/v1/snapshots/:id/document
func (h *SnapshotHandler) DownloadPhysicalDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid snapshot id format")
	}

	fc, err := h.snapshots.PhysicalDocument(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, fc.Name))
	return c.Blob(http.StatusOK, fc.ContentType, fc.Data)
}

func (h *SnapshotHandler) serveArtifact(c echo.Context, attachment bool) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid snapshot id format")
	}

	fc, err := h.snapshots.Artifact(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`%s; filename=%q`, disposition, fc.Name))
	return c.Blob(http.StatusOK, fc.ContentType, fc.Data)
}
