package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/resiflow/manifest/cmd/manifest/container"
	"github.com/resiflow/manifest/cmd/manifest/handlers"
	"github.com/resiflow/manifest/cmd/manifest/repository"
	"github.com/resiflow/manifest/cmd/manifest/routes"
	"github.com/resiflow/manifest/common/bootstrap"
	"github.com/resiflow/manifest/common/server"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (config, logger, DB with schema init)
	components, err := bootstrap.Setup(ctx, "manifest",
		bootstrap.WithDBInit(repository.InitSchema))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap manifest service: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}
	defer serviceContainer.Close()

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e)

	// Setup health check
	setupHealthCheck(e, components)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server
	startServer(e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		if err := components.Health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":  "degraded",
				"service": "manifest",
				"error":   err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "manifest",
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	api := e.Group("/api/v1")

	manifestHandler := handlers.NewManifestHandler(
		serviceContainer.Components,
		serviceContainer.ManifestService,
		serviceContainer.AmendService)
	lifecycleHandler := handlers.NewLifecycleHandler(
		serviceContainer.Components,
		serviceContainer.LifecycleService)
	reissueHandler := handlers.NewReissueHandler(
		serviceContainer.Components,
		serviceContainer.ReissueService)
	snapshotHandler := handlers.NewSnapshotHandler(
		serviceContainer.Components,
		serviceContainer.SnapshotService)

	routes.RegisterManifestRoutes(api, manifestHandler, lifecycleHandler, reissueHandler)
	routes.RegisterSnapshotRoutes(api, snapshotHandler)
}

// startServer starts the HTTP server with graceful shutdown
func startServer(e *echo.Echo, components *bootstrap.Components) {
	srv := server.New("manifest", components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
