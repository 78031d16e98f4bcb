package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
)

// ManifestStore is the entity-store collaborator for manifest versions.
// Implemented by repository.ManifestRepository; tests use an in-memory fake.
type ManifestStore interface {
	CreateVersion(ctx context.Context, v *models.ManifestVersion) error
	GetVersion(ctx context.Context, id uuid.UUID) (*models.ManifestVersion, error)
	CurrentVersion(ctx context.Context, lineageRootID uuid.UUID) (*models.ManifestVersion, error)
	ListLineage(ctx context.Context, lineageRootID uuid.UUID) ([]*models.ManifestVersion, error)
	UpdateHeader(ctx context.Context, v *models.ManifestVersion) error
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error

	// Deactivate clears is_current and forces the given status only if the
	// version is still current; returns false otherwise.
	Deactivate(ctx context.Context, id uuid.UUID, status models.Status) (bool, error)

	SetPhysicalDocument(ctx context.Context, id uuid.UUID, doc []byte, name string) error

	// CountByNumberPrefix counts existing public codes with the given base
	CountByNumberPrefix(ctx context.Context, base string) (int, error)

	// NextInternalSequence atomically reserves the next sequence value
	NextInternalSequence(ctx context.Context) (int64, error)

	// LockNumberBase serializes collision resolution per base code for the
	// duration of the enclosing transaction
	LockNumberBase(ctx context.Context, base string) error
}

// WasteLineStore is the entity-store collaborator for waste lines
type WasteLineStore interface {
	CreateLines(ctx context.Context, lines []*models.WasteLine) error
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*models.WasteLine, error)
}

// SnapshotStore is the entity-store collaborator for history snapshots
type SnapshotStore interface {
	CreateSnapshot(ctx context.Context, s *models.HistorySnapshot) error
	GetSnapshot(ctx context.Context, id uuid.UUID) (*models.HistorySnapshot, error)
	ListByLineage(ctx context.Context, lineageRootID uuid.UUID) ([]*models.HistorySnapshot, error)
	DeleteSnapshot(ctx context.Context, id uuid.UUID) error
}

// TxRunner runs a function inside a single storage transaction
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
