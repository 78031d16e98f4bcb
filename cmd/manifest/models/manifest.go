package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Party holds the identity and address block of one manifest party
// (generator, transporter or recipient). Copied verbatim into each
// version at creation time, never referenced live.
type Party struct {
	Name            string     `db:"name" json:"name"`
	Street          string     `db:"street" json:"street,omitempty"`
	ExteriorNumber  string     `db:"exterior_number" json:"exterior_number,omitempty"`
	InteriorNumber  string     `db:"interior_number" json:"interior_number,omitempty"`
	District        string     `db:"district" json:"district,omitempty"`
	Municipality    string     `db:"municipality" json:"municipality,omitempty"`
	State           string     `db:"state" json:"state,omitempty"`
	PostalCode      string     `db:"postal_code" json:"postal_code,omitempty"`
	Phone           string     `db:"phone" json:"phone,omitempty"`
	Email           string     `db:"email" json:"email,omitempty"`
	ResponsibleName string     `db:"responsible_name" json:"responsible_name,omitempty"`
	SignDate        *time.Time `db:"sign_date" json:"sign_date,omitempty"`
}

// ManifestVersion is one version of a hazardous-waste transfer manifest.
// Maps to: manifest_version table
type ManifestVersion struct {
	ID uuid.UUID `db:"id" json:"id"`

	// Assigned once per lineage, never reassigned on re-issue
	InternalSequence int64 `db:"internal_sequence" json:"internal_sequence"`

	// Human-facing code, identical across all versions of a lineage
	PublicNumber string `db:"public_number" json:"public_number"`

	// Starts at 1, increments by exactly 1 per re-issuance
	VersionIndex int `db:"version_index" json:"version_index"`

	// Self-reference for version 1; the version-1 id for all later versions
	LineageRootID uuid.UUID `db:"lineage_root_id" json:"lineage_root_id"`

	// Exactly one version per lineage is current at any time
	IsCurrent bool `db:"is_current" json:"is_current"`

	Status Status `db:"status" json:"status"`

	// Environmental registry number of the generator
	EnvironmentalRegistry string `db:"environmental_registry" json:"environmental_registry"`

	Generator   Party `json:"generator"`
	Transporter Party `json:"transporter"`
	Recipient   Party `json:"recipient"`

	// Transporter authorization data
	TransporterAuthorization string `db:"transporter_authorization" json:"transporter_authorization,omitempty"`
	TransportPermit          string `db:"transport_permit" json:"transport_permit,omitempty"`
	VehicleType              string `db:"vehicle_type" json:"vehicle_type,omitempty"`
	PlateNumber              string `db:"plate_number" json:"plate_number,omitempty"`
	Route                    string `db:"route" json:"route,omitempty"`

	// Recipient authorization data
	RecipientAuthorization string `db:"recipient_authorization" json:"recipient_authorization,omitempty"`
	ReceiverName           string `db:"receiver_name" json:"receiver_name,omitempty"`
	RecipientRemarks       string `db:"recipient_remarks" json:"recipient_remarks,omitempty"`

	SpecialInstructions string `db:"special_instructions" json:"special_instructions,omitempty"`

	// Why this version was created; cleared on every new version
	ChangeReason string `db:"change_reason" json:"change_reason,omitempty"`

	// Scanned physical document; cleared on every new version and must be
	// re-supplied per version. Not serialized in listings.
	PhysicalDocument     []byte `db:"physical_document" json:"-"`
	PhysicalDocumentName string `db:"physical_document_name" json:"physical_document_name,omitempty"`

	// Company scoping dimension for uniqueness checks
	CompanyID string `db:"company_id" json:"company_id,omitempty"`

	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayNumber renders the public number with the version suffix
// used in listings: "GM-28042025" for version 1, "GM-28042025 (v2)" after
func (v *ManifestVersion) DisplayNumber() string {
	if v.VersionIndex > 1 {
		return fmt.Sprintf("%s (v%d)", v.PublicNumber, v.VersionIndex)
	}
	return v.PublicNumber
}

// HasPhysicalDocument reports whether a scanned physical document is attached
func (v *ManifestVersion) HasPhysicalDocument() bool {
	return len(v.PhysicalDocument) > 0
}
