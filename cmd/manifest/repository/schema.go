package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/resiflow/manifest/common/db"
)

// schema is applied through the bootstrap DB init hook. Statements are
// idempotent so repeated startups are safe.
const schema = `
CREATE SEQUENCE IF NOT EXISTS manifest_internal_seq;

CREATE TABLE IF NOT EXISTS manifest_version (
	id                          UUID PRIMARY KEY,
	internal_sequence           BIGINT NOT NULL,
	public_number               TEXT NOT NULL,
	version_index               INT NOT NULL DEFAULT 1,
	lineage_root_id             UUID NOT NULL,
	is_current                  BOOLEAN NOT NULL DEFAULT TRUE,
	status                      TEXT NOT NULL DEFAULT 'draft',
	environmental_registry      TEXT NOT NULL DEFAULT '',
	generator_name              TEXT NOT NULL DEFAULT '',
	generator_street            TEXT NOT NULL DEFAULT '',
	generator_exterior_number   TEXT NOT NULL DEFAULT '',
	generator_interior_number   TEXT NOT NULL DEFAULT '',
	generator_district          TEXT NOT NULL DEFAULT '',
	generator_municipality      TEXT NOT NULL DEFAULT '',
	generator_state             TEXT NOT NULL DEFAULT '',
	generator_postal_code       TEXT NOT NULL DEFAULT '',
	generator_phone             TEXT NOT NULL DEFAULT '',
	generator_email             TEXT NOT NULL DEFAULT '',
	generator_responsible_name  TEXT NOT NULL DEFAULT '',
	generator_sign_date         TIMESTAMPTZ,
	transporter_name            TEXT NOT NULL DEFAULT '',
	transporter_street          TEXT NOT NULL DEFAULT '',
	transporter_exterior_number TEXT NOT NULL DEFAULT '',
	transporter_interior_number TEXT NOT NULL DEFAULT '',
	transporter_district        TEXT NOT NULL DEFAULT '',
	transporter_municipality    TEXT NOT NULL DEFAULT '',
	transporter_state           TEXT NOT NULL DEFAULT '',
	transporter_postal_code     TEXT NOT NULL DEFAULT '',
	transporter_phone           TEXT NOT NULL DEFAULT '',
	transporter_email           TEXT NOT NULL DEFAULT '',
	transporter_responsible_name TEXT NOT NULL DEFAULT '',
	transporter_sign_date       TIMESTAMPTZ,
	recipient_name              TEXT NOT NULL DEFAULT '',
	recipient_street            TEXT NOT NULL DEFAULT '',
	recipient_exterior_number   TEXT NOT NULL DEFAULT '',
	recipient_interior_number   TEXT NOT NULL DEFAULT '',
	recipient_district          TEXT NOT NULL DEFAULT '',
	recipient_municipality      TEXT NOT NULL DEFAULT '',
	recipient_state             TEXT NOT NULL DEFAULT '',
	recipient_postal_code       TEXT NOT NULL DEFAULT '',
	recipient_phone             TEXT NOT NULL DEFAULT '',
	recipient_email             TEXT NOT NULL DEFAULT '',
	recipient_responsible_name  TEXT NOT NULL DEFAULT '',
	recipient_sign_date         TIMESTAMPTZ,
	transporter_authorization   TEXT NOT NULL DEFAULT '',
	transport_permit            TEXT NOT NULL DEFAULT '',
	vehicle_type                TEXT NOT NULL DEFAULT '',
	plate_number                TEXT NOT NULL DEFAULT '',
	route                       TEXT NOT NULL DEFAULT '',
	recipient_authorization     TEXT NOT NULL DEFAULT '',
	receiver_name               TEXT NOT NULL DEFAULT '',
	recipient_remarks           TEXT NOT NULL DEFAULT '',
	special_instructions        TEXT NOT NULL DEFAULT '',
	change_reason               TEXT NOT NULL DEFAULT '',
	physical_document           BYTEA,
	physical_document_name      TEXT NOT NULL DEFAULT '',
	company_id                  TEXT NOT NULL DEFAULT '',
	created_by                  TEXT NOT NULL DEFAULT '',
	created_at                  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at                  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Internal sequence is unique across the whole store; it repeats within a
-- lineage, so uniqueness is enforced on the lineage roots only.
CREATE UNIQUE INDEX IF NOT EXISTS ux_manifest_version_internal_sequence
	ON manifest_version (internal_sequence) WHERE version_index = 1;

-- Exactly one current version per lineage.
CREATE UNIQUE INDEX IF NOT EXISTS ux_manifest_version_current
	ON manifest_version (lineage_root_id) WHERE is_current;

CREATE INDEX IF NOT EXISTS ix_manifest_version_public_number
	ON manifest_version (public_number text_pattern_ops);

CREATE INDEX IF NOT EXISTS ix_manifest_version_lineage
	ON manifest_version (lineage_root_id, version_index);

CREATE TABLE IF NOT EXISTS waste_line (
	id                 UUID PRIMARY KEY,
	version_id         UUID NOT NULL REFERENCES manifest_version(id) ON DELETE CASCADE,
	name               TEXT NOT NULL,
	quantity_kg        DOUBLE PRECISION NOT NULL DEFAULT 0,
	hazard_corrosive   BOOLEAN NOT NULL DEFAULT FALSE,
	hazard_reactive    BOOLEAN NOT NULL DEFAULT FALSE,
	hazard_explosive   BOOLEAN NOT NULL DEFAULT FALSE,
	hazard_toxic       BOOLEAN NOT NULL DEFAULT FALSE,
	hazard_flammable   BOOLEAN NOT NULL DEFAULT FALSE,
	hazard_biological  BOOLEAN NOT NULL DEFAULT FALSE,
	packaging          TEXT NOT NULL DEFAULT 'other',
	packaging_capacity TEXT NOT NULL DEFAULT '',
	labeled_yes        BOOLEAN NOT NULL DEFAULT TRUE,
	labeled_no         BOOLEAN NOT NULL DEFAULT FALSE,
	position           INT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS ix_waste_line_version
	ON waste_line (version_id, position);

CREATE TABLE IF NOT EXISTS history_snapshot (
	id                     UUID PRIMARY KEY,
	lineage_root_id        UUID NOT NULL REFERENCES manifest_version(id),
	version_number         INT NOT NULL,
	artifact_kind          TEXT NOT NULL,
	artifact_name          TEXT NOT NULL DEFAULT '',
	artifact               BYTEA,
	physical_document      BYTEA,
	physical_document_name TEXT NOT NULL DEFAULT '',
	had_physical_document  BOOLEAN NOT NULL DEFAULT FALSE,
	captured_status        TEXT NOT NULL,
	change_reason          TEXT NOT NULL DEFAULT '',
	public_number          TEXT NOT NULL DEFAULT '',
	generator_name         TEXT NOT NULL DEFAULT '',
	transporter_name       TEXT NOT NULL DEFAULT '',
	recipient_name         TEXT NOT NULL DEFAULT '',
	line_count             INT NOT NULL DEFAULT 0,
	created_by             TEXT NOT NULL DEFAULT '',
	created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (lineage_root_id, version_number)
);

CREATE INDEX IF NOT EXISTS ix_history_snapshot_lineage
	ON history_snapshot (lineage_root_id, version_number DESC);
`

// InitSchema applies the schema. Passed to bootstrap as the DB init hook.
func InitSchema(database *db.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := database.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}
