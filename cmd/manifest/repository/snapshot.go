package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/db"
)

const snapshotColumns = `id, lineage_root_id, version_number,
	artifact_kind, artifact_name, artifact,
	physical_document, physical_document_name, had_physical_document,
	captured_status, change_reason,
	public_number, generator_name, transporter_name, recipient_name, line_count,
	created_by, created_at`

// SnapshotRepository handles database operations for history snapshots
type SnapshotRepository struct {
	db *db.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *db.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// CreateSnapshot inserts a new history snapshot
func (r *SnapshotRepository) CreateSnapshot(ctx context.Context, s *models.HistorySnapshot) error {
	query := fmt.Sprintf(`INSERT INTO history_snapshot (%s) VALUES (%s)`, snapshotColumns, placeholders(18))

	_, err := q(ctx, r.db.Pool).Exec(ctx, query,
		s.ID,
		s.LineageRootID,
		s.VersionNumber,
		s.ArtifactKind,
		s.ArtifactName,
		s.Artifact,
		s.PhysicalDocument,
		s.PhysicalDocumentName,
		s.HadPhysicalDocument,
		s.CapturedStatus,
		s.ChangeReason,
		s.PublicNumber,
		s.GeneratorName,
		s.TransporterName,
		s.RecipientName,
		s.LineCount,
		s.CreatedBy,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create history snapshot: %w", err)
	}

	return nil
}

// GetSnapshot retrieves a snapshot by id
func (r *SnapshotRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (*models.HistorySnapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM history_snapshot WHERE id = $1`, snapshotColumns)

	s, err := scanSnapshot(q(ctx, r.db.Pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: snapshot %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return s, nil
}

// ListByLineage retrieves every snapshot of a lineage, newest first
func (r *SnapshotRepository) ListByLineage(ctx context.Context, lineageRootID uuid.UUID) ([]*models.HistorySnapshot, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM history_snapshot WHERE lineage_root_id = $1 ORDER BY version_number DESC`,
		snapshotColumns,
	)

	rows, err := q(ctx, r.db.Pool).Query(ctx, query, lineageRootID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.HistorySnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// DeleteSnapshot removes a snapshot. The origin snapshot (version 1) is
// the permanent record of the lineage and is refused.
func (r *SnapshotRepository) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM history_snapshot WHERE id = $1 AND version_number > 1`

	result, err := q(ctx, r.db.Pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a protected origin snapshot from a missing row
		var versionNumber int
		err := q(ctx, r.db.Pool).QueryRow(ctx,
			`SELECT version_number FROM history_snapshot WHERE id = $1`, id).Scan(&versionNumber)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: snapshot %s", models.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to check snapshot: %w", err)
		}
		return fmt.Errorf("%w: snapshot for version 1 is the record of origin", models.ErrProtectedRecord)
	}

	return nil
}

func scanSnapshot(row pgx.Row) (*models.HistorySnapshot, error) {
	s := &models.HistorySnapshot{}
	err := row.Scan(
		&s.ID,
		&s.LineageRootID,
		&s.VersionNumber,
		&s.ArtifactKind,
		&s.ArtifactName,
		&s.Artifact,
		&s.PhysicalDocument,
		&s.PhysicalDocumentName,
		&s.HadPhysicalDocument,
		&s.CapturedStatus,
		&s.ChangeReason,
		&s.PublicNumber,
		&s.GeneratorName,
		&s.TransporterName,
		&s.RecipientName,
		&s.LineCount,
		&s.CreatedBy,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}
