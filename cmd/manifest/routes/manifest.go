package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/resiflow/manifest/cmd/manifest/handlers"
)

// RegisterManifestRoutes registers lineage and version routes
func RegisterManifestRoutes(e *echo.Group, manifests *handlers.ManifestHandler, lifecycle *handlers.LifecycleHandler, reissue *handlers.ReissueHandler) {
	// POST /api/v1/manifests - Open a new lineage at version 1
	e.POST("/manifests", manifests.CreateLineage)
	// GET /api/v1/manifests/:id - Get a version by id
	e.GET("/manifests/:id", manifests.GetVersion)
	// GET /api/v1/manifests/:id/lines - Waste lines of a version
	e.GET("/manifests/:id/lines", manifests.GetLines)
	// PATCH /api/v1/manifests/:id - Amend a draft header
	e.PATCH("/manifests/:id", manifests.AmendDraft)
	// PUT /api/v1/manifests/:id/document - Attach a scanned document
	e.PUT("/manifests/:id/document", manifests.AttachPhysicalDocument)

	// Status transitions
	e.POST("/manifests/:id/confirm", lifecycle.Confirm)
	e.POST("/manifests/:id/transit", lifecycle.MarkInTransit)
	e.POST("/manifests/:id/deliver", lifecycle.MarkDelivered)
	e.POST("/manifests/:id/cancel", lifecycle.Cancel)

	// POST /api/v1/manifests/:id/reissue - Supersede with a new draft
	e.POST("/manifests/:id/reissue", reissue.Reissue)

	// Lineage views
	e.GET("/lineages/:id/versions", manifests.ListLineage)
	e.GET("/lineages/:id/current", manifests.GetCurrent)
}
