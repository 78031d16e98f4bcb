package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/cache"
	"github.com/resiflow/manifest/common/logger"
)

// FileContent is a downloadable payload extracted from a snapshot.
type FileContent struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// SnapshotService serves archived version snapshots and their payloads,
// caching the byte-heavy artifact reads.
type SnapshotService struct {
	snapshots SnapshotStore
	cache     cache.Cache
	cacheTTL  time.Duration
	log       *logger.Logger
}

// NewSnapshotService creates a new snapshot service. cache may be nil.
func NewSnapshotService(snapshots SnapshotStore, c cache.Cache, cacheTTL time.Duration, log *logger.Logger) *SnapshotService {
	return &SnapshotService{
		snapshots: snapshots,
		cache:     c,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

// ListByLineage returns the snapshot history of a lineage, newest first.
func (s *SnapshotService) ListByLineage(ctx context.Context, lineageRootID uuid.UUID) ([]*models.HistorySnapshot, error) {
	return s.snapshots.ListByLineage(ctx, lineageRootID)
}

// Get returns a single snapshot by id.
func (s *SnapshotService) Get(ctx context.Context, id uuid.UUID) (*models.HistorySnapshot, error) {
	return s.snapshots.GetSnapshot(ctx, id)
}

// Delete removes a snapshot. The origin snapshot (version 1) is
// protected and cannot be deleted.
func (s *SnapshotService) Delete(ctx context.Context, id uuid.UUID) error {
	snap, err := s.snapshots.GetSnapshot(ctx, id)
	if err != nil {
		return err
	}
	if snap.IsOrigin() {
		return fmt.Errorf("%w: the origin snapshot of %s cannot be deleted", models.ErrProtectedRecord, snap.PublicNumber)
	}

	if err := s.snapshots.DeleteSnapshot(ctx, id); err != nil {
		return err
	}

	s.purgeCache(ctx, id)
	s.log.WithManifest(snap.PublicNumber).Info("deleted snapshot",
		"version", snap.VersionNumber, "snapshot_id", id)
	return nil
}

// Artifact returns the archived artifact of a snapshot as a downloadable
// file.
func (s *SnapshotService) Artifact(ctx context.Context, id uuid.UUID) (*FileContent, error) {
	key := artifactCacheKey(id)
	if fc := s.fromCache(ctx, key); fc != nil {
		return fc, nil
	}

	snap, err := s.snapshots.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(snap.Artifact) == 0 {
		return nil, fmt.Errorf("%w: snapshot %s carries no artifact", models.ErrEmptyArtifact, id)
	}

	fc := &FileContent{
		Name:        snap.ArtifactName,
		ContentType: artifactContentType(snap.ArtifactKind, snap.ArtifactName),
		Data:        snap.Artifact,
	}
	s.toCache(ctx, key, fc)
	return fc, nil
}

// PhysicalDocument returns the scanned document archived with a snapshot.
func (s *SnapshotService) PhysicalDocument(ctx context.Context, id uuid.UUID) (*FileContent, error) {
	snap, err := s.snapshots.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(snap.PhysicalDocument) == 0 {
		return nil, fmt.Errorf("%w: no physical document was archived with snapshot %s", models.ErrNotFound, id)
	}

	name := snap.PhysicalDocumentName
	if name == "" {
		name = fmt.Sprintf("Manifest_%s_v%d_scan", snap.PublicNumber, snap.VersionNumber)
	}
	return &FileContent{
		Name:        name,
		ContentType: "application/octet-stream",
		Data:        snap.PhysicalDocument,
	}, nil
}

func (s *SnapshotService) fromCache(ctx context.Context, key string) *FileContent {
	if s.cache == nil {
		return nil
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil
	}
	var fc FileContent
	if err := json.Unmarshal(raw, &fc); err != nil {
		s.log.Warn("discarding corrupt cache entry", "key", key, "error", err)
		_ = s.cache.Delete(ctx, key)
		return nil
	}
	return &fc
}

func (s *SnapshotService) toCache(ctx context.Context, key string, fc *FileContent) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(fc)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache snapshot artifact", "key", key, "error", err)
	}
}

func (s *SnapshotService) purgeCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, artifactCacheKey(id)); err != nil {
		s.log.Warn("failed to purge snapshot cache", "snapshot_id", id, "error", err)
	}
}

func artifactCacheKey(id uuid.UUID) string {
	return "snapshot:artifact:" + id.String()
}

// artifactContentType maps an archived artifact to a serving content
// type. Document artifacts take whatever format the renderer produced,
// so the type follows the stored name rather than the kind.
func artifactContentType(kind models.ArtifactKind, name string) string {
	if kind == models.ArtifactTextDump {
		return "text/plain; charset=utf-8"
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
