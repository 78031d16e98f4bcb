package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ArtifactKind identifies what was captured into a snapshot
type ArtifactKind string

const (
	// ArtifactDocument is a rendered document blob
	ArtifactDocument ArtifactKind = "document"
	// ArtifactTextDump is the structured-text serialization fallback
	ArtifactTextDump ArtifactKind = "text_dump"
)

// HistorySnapshot is the immutable capture of a manifest version taken
// before a re-issuance deactivates it. Exactly one artifact kind is
// populated per snapshot. The snapshot for version 1 is the permanent
// record of origin and can never be deleted.
// Maps to: history_snapshot table
type HistorySnapshot struct {
	ID uuid.UUID `db:"id" json:"id"`

	// References the lineage root (version 1)
	LineageRootID uuid.UUID `db:"lineage_root_id" json:"lineage_root_id"`

	// The version index this snapshot captures
	VersionNumber int `db:"version_number" json:"version_number"`

	ArtifactKind ArtifactKind `db:"artifact_kind" json:"artifact_kind"`
	ArtifactName string       `db:"artifact_name" json:"artifact_name"`
	Artifact     []byte       `db:"artifact" json:"-"`

	// Physical document the captured version carried, if any
	PhysicalDocument     []byte `db:"physical_document" json:"-"`
	PhysicalDocumentName string `db:"physical_document_name" json:"physical_document_name,omitempty"`
	HadPhysicalDocument  bool   `db:"had_physical_document" json:"had_physical_document"`

	CapturedStatus Status `db:"captured_status" json:"captured_status"`
	ChangeReason   string `db:"change_reason" json:"change_reason,omitempty"`

	// Denormalized summary fields for fast listing without touching
	// the frozen payload
	PublicNumber    string `db:"public_number" json:"public_number"`
	GeneratorName   string `db:"generator_name" json:"generator_name"`
	TransporterName string `db:"transporter_name" json:"transporter_name"`
	RecipientName   string `db:"recipient_name" json:"recipient_name"`
	LineCount       int    `db:"line_count" json:"line_count"`

	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsOrigin reports whether this snapshot is the permanent record of origin
func (s *HistorySnapshot) IsOrigin() bool {
	return s.VersionNumber == 1
}

// DisplayName renders the snapshot name used in listings
func (s *HistorySnapshot) DisplayName() string {
	return fmt.Sprintf("%s - version %d (%s)",
		s.PublicNumber, s.VersionNumber, s.CreatedAt.Format("02/01/2006 15:04"))
}
