package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/resiflow/manifest/cmd/manifest/handlers"
)

// RegisterSnapshotRoutes registers snapshot history routes
func RegisterSnapshotRoutes(e *echo.Group, snapshots *handlers.SnapshotHandler) {
	// GET /api/v1/lineages/:id/snapshots - Snapshot history of a lineage
	e.GET("/lineages/:id/snapshots", snapshots.ListByLineage)
	// GET /api/v1/snapshots/:id - Snapshot metadata
	e.GET("/snapshots/:id", snapshots.GetSnapshot)
	// DELETE /api/v1/snapshots/:id - Delete a non-origin snapshot
	e.DELETE("/snapshots/:id", snapshots.DeleteSnapshot)
	// Artifact payloads
	e.GET("/snapshots/:id/artifact", snapshots.DownloadArtifact)
	e.GET("/snapshots/:id/artifact/view", snapshots.ViewArtifact)
	// GET /api/v1/snapshots/:id/document - Archived scanned document
	e.GET("/snapshots/:id/document", snapshots.DownloadPhysicalDocument)
}
