package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/db"
)

// versionColumns is the canonical column order shared by inserts and scans.
const versionColumns = `id, internal_sequence, public_number, version_index, lineage_root_id, is_current, status,
	environmental_registry,
	generator_name, generator_street, generator_exterior_number, generator_interior_number,
	generator_district, generator_municipality, generator_state, generator_postal_code,
	generator_phone, generator_email, generator_responsible_name, generator_sign_date,
	transporter_name, transporter_street, transporter_exterior_number, transporter_interior_number,
	transporter_district, transporter_municipality, transporter_state, transporter_postal_code,
	transporter_phone, transporter_email, transporter_responsible_name, transporter_sign_date,
	recipient_name, recipient_street, recipient_exterior_number, recipient_interior_number,
	recipient_district, recipient_municipality, recipient_state, recipient_postal_code,
	recipient_phone, recipient_email, recipient_responsible_name, recipient_sign_date,
	transporter_authorization, transport_permit, vehicle_type, plate_number, route,
	recipient_authorization, receiver_name, recipient_remarks,
	special_instructions, change_reason,
	physical_document, physical_document_name, company_id,
	created_by, created_at, updated_at`

const versionColumnCount = 60

// ManifestRepository handles database operations for manifest versions
type ManifestRepository struct {
	db *db.DB
}

// NewManifestRepository creates a new manifest repository
func NewManifestRepository(db *db.DB) *ManifestRepository {
	return &ManifestRepository{db: db}
}

// CreateVersion inserts a new manifest version
func (r *ManifestRepository) CreateVersion(ctx context.Context, v *models.ManifestVersion) error {
	query := fmt.Sprintf(
		`INSERT INTO manifest_version (%s) VALUES (%s)`,
		versionColumns, placeholders(versionColumnCount),
	)

	_, err := q(ctx, r.db.Pool).Exec(ctx, query, versionArgs(v)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "internal_sequence") {
				return fmt.Errorf("%w: sequence %d already allocated",
					models.ErrDuplicateSequence, v.InternalSequence)
			}
			if strings.Contains(pgErr.ConstraintName, "current") {
				return fmt.Errorf("%w: lineage %s already has a current version",
					models.ErrNotCurrentVersion, v.LineageRootID)
			}
		}
		return fmt.Errorf("failed to create manifest version: %w", err)
	}

	return nil
}

// GetVersion retrieves a manifest version by id
func (r *ManifestRepository) GetVersion(ctx context.Context, id uuid.UUID) (*models.ManifestVersion, error) {
	query := fmt.Sprintf(`SELECT %s FROM manifest_version WHERE id = $1`, versionColumns)

	v, err := scanVersion(q(ctx, r.db.Pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: manifest version %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get manifest version: %w", err)
	}

	return v, nil
}

// CurrentVersion retrieves the current version of a lineage
func (r *ManifestRepository) CurrentVersion(ctx context.Context, lineageRootID uuid.UUID) (*models.ManifestVersion, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM manifest_version WHERE lineage_root_id = $1 AND is_current`,
		versionColumns,
	)

	v, err := scanVersion(q(ctx, r.db.Pool).QueryRow(ctx, query, lineageRootID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no current version for lineage %s", models.ErrNotFound, lineageRootID)
		}
		return nil, fmt.Errorf("failed to get current version: %w", err)
	}

	return v, nil
}

// ListLineage retrieves every version of a lineage, newest first
func (r *ManifestRepository) ListLineage(ctx context.Context, lineageRootID uuid.UUID) ([]*models.ManifestVersion, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM manifest_version WHERE lineage_root_id = $1 ORDER BY version_index DESC`,
		versionColumns,
	)

	rows, err := q(ctx, r.db.Pool).Query(ctx, query, lineageRootID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lineage: %w", err)
	}
	defer rows.Close()

	var versions []*models.ManifestVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manifest version: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lineage: %w", err)
	}

	return versions, nil
}

// UpdateHeader updates the mutable header fields of a version
func (r *ManifestRepository) UpdateHeader(ctx context.Context, v *models.ManifestVersion) error {
	query := `
		UPDATE manifest_version SET
			environmental_registry = $2,
			generator_name = $3, generator_street = $4, generator_exterior_number = $5,
			generator_interior_number = $6, generator_district = $7, generator_municipality = $8,
			generator_state = $9, generator_postal_code = $10, generator_phone = $11,
			generator_email = $12, generator_responsible_name = $13, generator_sign_date = $14,
			transporter_name = $15, transporter_street = $16, transporter_exterior_number = $17,
			transporter_interior_number = $18, transporter_district = $19, transporter_municipality = $20,
			transporter_state = $21, transporter_postal_code = $22, transporter_phone = $23,
			transporter_email = $24, transporter_responsible_name = $25, transporter_sign_date = $26,
			recipient_name = $27, recipient_street = $28, recipient_exterior_number = $29,
			recipient_interior_number = $30, recipient_district = $31, recipient_municipality = $32,
			recipient_state = $33, recipient_postal_code = $34, recipient_phone = $35,
			recipient_email = $36, recipient_responsible_name = $37, recipient_sign_date = $38,
			transporter_authorization = $39, transport_permit = $40, vehicle_type = $41,
			plate_number = $42, route = $43,
			recipient_authorization = $44, receiver_name = $45, recipient_remarks = $46,
			special_instructions = $47, change_reason = $48,
			updated_at = NOW()
		WHERE id = $1
	`

	args := []any{
		v.ID,
		v.EnvironmentalRegistry,
	}
	args = append(args, partyArgs(&v.Generator)...)
	args = append(args, partyArgs(&v.Transporter)...)
	args = append(args, partyArgs(&v.Recipient)...)
	args = append(args,
		v.TransporterAuthorization, v.TransportPermit, v.VehicleType,
		v.PlateNumber, v.Route,
		v.RecipientAuthorization, v.ReceiverName, v.RecipientRemarks,
		v.SpecialInstructions, v.ChangeReason,
	)

	result, err := q(ctx, r.db.Pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update manifest header: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: manifest version %s", models.ErrNotFound, v.ID)
	}

	return nil
}

// SetStatus updates the status of a version
func (r *ManifestRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	query := `UPDATE manifest_version SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := q(ctx, r.db.Pool).Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: manifest version %s", models.ErrNotFound, id)
	}

	return nil
}

// Deactivate clears the is_current flag and forces the given status, but
// only if the version is still current. Returns false when another
// transition got there first.
func (r *ManifestRepository) Deactivate(ctx context.Context, id uuid.UUID, status models.Status) (bool, error) {
	query := `
		UPDATE manifest_version
		SET is_current = FALSE, status = $2, updated_at = NOW()
		WHERE id = $1 AND is_current
	`

	result, err := q(ctx, r.db.Pool).Exec(ctx, query, id, status)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate version: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// SetPhysicalDocument attaches (or clears) the scanned physical document
func (r *ManifestRepository) SetPhysicalDocument(ctx context.Context, id uuid.UUID, doc []byte, name string) error {
	query := `
		UPDATE manifest_version
		SET physical_document = $2, physical_document_name = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := q(ctx, r.db.Pool).Exec(ctx, query, id, doc, name)
	if err != nil {
		return fmt.Errorf("failed to set physical document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: manifest version %s", models.ErrNotFound, id)
	}

	return nil
}

// CountByNumberPrefix counts existing public codes starting with the base.
// Only lineage roots are counted so re-issued versions do not inflate the
// collision suffix.
func (r *ManifestRepository) CountByNumberPrefix(ctx context.Context, base string) (int, error) {
	query := `
		SELECT COUNT(*) FROM manifest_version
		WHERE public_number LIKE $1 || '%' AND version_index = 1
	`

	var count int
	if err := q(ctx, r.db.Pool).QueryRow(ctx, query, base).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count number prefix: %w", err)
	}

	return count, nil
}

// NextInternalSequence reserves the next internal sequence value. The
// Postgres sequence makes the read-then-reserve atomic; two concurrent
// creations can never observe the same value.
func (r *ManifestRepository) NextInternalSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := q(ctx, r.db.Pool).QueryRow(ctx, `SELECT nextval('manifest_internal_seq')`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve internal sequence: %w", err)
	}

	return seq, nil
}

// LockNumberBase serializes public-number collision resolution per base
// code for the duration of the surrounding transaction.
func (r *ManifestRepository) LockNumberBase(ctx context.Context, base string) error {
	_, err := q(ctx, r.db.Pool).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, base)
	if err != nil {
		return fmt.Errorf("failed to lock number base %s: %w", base, err)
	}

	return nil
}

// placeholders builds "$1, $2, ..., $n"
func placeholders(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", i)
	}
	return b.String()
}

func partyArgs(p *models.Party) []any {
	return []any{
		p.Name, p.Street, p.ExteriorNumber, p.InteriorNumber,
		p.District, p.Municipality, p.State, p.PostalCode,
		p.Phone, p.Email, p.ResponsibleName, p.SignDate,
	}
}

func versionArgs(v *models.ManifestVersion) []any {
	args := []any{
		v.ID, v.InternalSequence, v.PublicNumber, v.VersionIndex,
		v.LineageRootID, v.IsCurrent, v.Status,
		v.EnvironmentalRegistry,
	}
	args = append(args, partyArgs(&v.Generator)...)
	args = append(args, partyArgs(&v.Transporter)...)
	args = append(args, partyArgs(&v.Recipient)...)
	args = append(args,
		v.TransporterAuthorization, v.TransportPermit, v.VehicleType,
		v.PlateNumber, v.Route,
		v.RecipientAuthorization, v.ReceiverName, v.RecipientRemarks,
		v.SpecialInstructions, v.ChangeReason,
		v.PhysicalDocument, v.PhysicalDocumentName, v.CompanyID,
		v.CreatedBy, v.CreatedAt, v.UpdatedAt,
	)
	return args
}

func scanVersion(row pgx.Row) (*models.ManifestVersion, error) {
	v := &models.ManifestVersion{}
	err := row.Scan(
		&v.ID, &v.InternalSequence, &v.PublicNumber, &v.VersionIndex,
		&v.LineageRootID, &v.IsCurrent, &v.Status,
		&v.EnvironmentalRegistry,
		&v.Generator.Name, &v.Generator.Street, &v.Generator.ExteriorNumber, &v.Generator.InteriorNumber,
		&v.Generator.District, &v.Generator.Municipality, &v.Generator.State, &v.Generator.PostalCode,
		&v.Generator.Phone, &v.Generator.Email, &v.Generator.ResponsibleName, &v.Generator.SignDate,
		&v.Transporter.Name, &v.Transporter.Street, &v.Transporter.ExteriorNumber, &v.Transporter.InteriorNumber,
		&v.Transporter.District, &v.Transporter.Municipality, &v.Transporter.State, &v.Transporter.PostalCode,
		&v.Transporter.Phone, &v.Transporter.Email, &v.Transporter.ResponsibleName, &v.Transporter.SignDate,
		&v.Recipient.Name, &v.Recipient.Street, &v.Recipient.ExteriorNumber, &v.Recipient.InteriorNumber,
		&v.Recipient.District, &v.Recipient.Municipality, &v.Recipient.State, &v.Recipient.PostalCode,
		&v.Recipient.Phone, &v.Recipient.Email, &v.Recipient.ResponsibleName, &v.Recipient.SignDate,
		&v.TransporterAuthorization, &v.TransportPermit, &v.VehicleType,
		&v.PlateNumber, &v.Route,
		&v.RecipientAuthorization, &v.ReceiverName, &v.RecipientRemarks,
		&v.SpecialInstructions, &v.ChangeReason,
		&v.PhysicalDocument, &v.PhysicalDocumentName, &v.CompanyID,
		&v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return v, nil
}
