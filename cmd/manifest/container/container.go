package container

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/resiflow/manifest/cmd/manifest/repository"
	"github.com/resiflow/manifest/cmd/manifest/service"
	"github.com/resiflow/manifest/common/bootstrap"
	"github.com/resiflow/manifest/common/cache"
	rediscommon "github.com/resiflow/manifest/common/redis"
	"github.com/resiflow/manifest/common/validation"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components
	Redis      *rediscommon.Client
	Cache      cache.Cache

	// Repositories
	ManifestRepo  *repository.ManifestRepository
	WasteLineRepo *repository.WasteLineRepository
	SnapshotRepo  *repository.SnapshotRepository
	Tx            *repository.TxRunner

	// Services
	NumberingService *service.NumberingService
	ArchiverService  *service.ArchiverService
	Renderer         *service.TemplateRenderer
	ManifestService  *service.ManifestService
	LifecycleService *service.LifecycleService
	ReissueService   *service.ReissueService
	AmendService     *service.AmendService
	SnapshotService  *service.SnapshotService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Initialize repositories
	manifestRepo := repository.NewManifestRepository(components.DB)
	wasteLineRepo := repository.NewWasteLineRepository(components.DB)
	snapshotRepo := repository.NewSnapshotRepository(components.DB)
	tx := repository.NewTxRunner(components.DB)

	// Cache backend for snapshot artifact reads
	var (
		redisClient   *rediscommon.Client
		artifactCache cache.Cache
	)
	if cfg.Cache.Enabled {
		switch cfg.Cache.Backend {
		case "redis":
			raw := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			redisClient = rediscommon.NewClient(raw, components.Logger)
			artifactCache = cache.NewRedisCache(redisClient, cfg.Service.Name)
		case "memory":
			artifactCache = cache.NewMemoryCache(components.Logger)
		default:
			return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
		}
	}

	validator, err := validation.NewWasteRuleValidator(validation.DefaultWasteRules())
	if err != nil {
		return nil, fmt.Errorf("failed to build waste rule validator: %w", err)
	}

	// Initialize services (bottom-up: dependencies first)
	numberingService := service.NewNumberingService(manifestRepo, components.Logger)
	archiverService := service.NewArchiverService(snapshotRepo, components.Logger)
	renderer := service.NewTemplateRenderer()

	manifestService := service.NewManifestService(
		manifestRepo, wasteLineRepo, numberingService, validator,
		cfg.Defaults, tx, components.Logger)
	lifecycleService := service.NewLifecycleService(manifestRepo, components.Logger)
	reissueService := service.NewReissueService(
		manifestRepo, wasteLineRepo, archiverService, renderer, tx, components.Logger)
	amendService := service.NewAmendService(manifestRepo, components.Logger)
	snapshotService := service.NewSnapshotService(
		snapshotRepo, artifactCache, cfg.Cache.ArtifactTTL, components.Logger)

	return &Container{
		Components: components,
		Redis:      redisClient,
		Cache:      artifactCache,

		ManifestRepo:  manifestRepo,
		WasteLineRepo: wasteLineRepo,
		SnapshotRepo:  snapshotRepo,
		Tx:            tx,

		NumberingService: numberingService,
		ArchiverService:  archiverService,
		Renderer:         renderer,
		ManifestService:  manifestService,
		LifecycleService: lifecycleService,
		ReissueService:   reissueService,
		AmendService:     amendService,
		SnapshotService:  snapshotService,
	}, nil
}

// Close releases container-owned resources
func (c *Container) Close() error {
	var firstErr error
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
