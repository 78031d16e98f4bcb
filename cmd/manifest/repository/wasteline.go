package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/db"
)

const lineColumns = `id, version_id, name, quantity_kg,
	hazard_corrosive, hazard_reactive, hazard_explosive,
	hazard_toxic, hazard_flammable, hazard_biological,
	packaging, packaging_capacity, labeled_yes, labeled_no, position`

// WasteLineRepository handles database operations for waste lines
type WasteLineRepository struct {
	db *db.DB
}

// NewWasteLineRepository creates a new waste line repository
func NewWasteLineRepository(db *db.DB) *WasteLineRepository {
	return &WasteLineRepository{db: db}
}

// CreateLines inserts the given lines
func (r *WasteLineRepository) CreateLines(ctx context.Context, lines []*models.WasteLine) error {
	query := fmt.Sprintf(`INSERT INTO waste_line (%s) VALUES (%s)`, lineColumns, placeholders(15))

	for _, line := range lines {
		_, err := q(ctx, r.db.Pool).Exec(ctx, query,
			line.ID,
			line.VersionID,
			line.Name,
			line.QuantityKg,
			line.Hazard.Corrosive,
			line.Hazard.Reactive,
			line.Hazard.Explosive,
			line.Hazard.Toxic,
			line.Hazard.Flammable,
			line.Hazard.Biological,
			line.Packaging,
			line.PackagingCapacity,
			line.LabeledYes,
			line.LabeledNo,
			line.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to create waste line: %w", err)
		}
	}

	return nil
}

// ListByVersion retrieves the lines of a version in position order
func (r *WasteLineRepository) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*models.WasteLine, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM waste_line WHERE version_id = $1 ORDER BY position ASC`,
		lineColumns,
	)

	rows, err := q(ctx, r.db.Pool).Query(ctx, query, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list waste lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.WasteLine
	for rows.Next() {
		line := &models.WasteLine{}
		err := rows.Scan(
			&line.ID,
			&line.VersionID,
			&line.Name,
			&line.QuantityKg,
			&line.Hazard.Corrosive,
			&line.Hazard.Reactive,
			&line.Hazard.Explosive,
			&line.Hazard.Toxic,
			&line.Hazard.Flammable,
			&line.Hazard.Biological,
			&line.Packaging,
			&line.PackagingCapacity,
			&line.LabeledYes,
			&line.LabeledNo,
			&line.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan waste line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating waste lines: %w", err)
	}

	return lines, nil
}
