package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/logger"
)

// Artifact is a rendered byte payload destined for a history snapshot,
// either a rendered document or a plain-text data dump.
type Artifact struct {
	Kind    models.ArtifactKind
	Name    string
	Content []byte
}

// ArchiverService captures immutable point-in-time snapshots of manifest
// versions before they are superseded.
type ArchiverService struct {
	snapshots SnapshotStore
	log       *logger.Logger
	now       func() time.Time
}

// NewArchiverService creates a new archiver service
func NewArchiverService(snapshots SnapshotStore, log *logger.Logger) *ArchiverService {
	return &ArchiverService{
		snapshots: snapshots,
		log:       log,
		now:       time.Now,
	}
}

// ValidateForReissue checks that a version carries enough data to be
// archived meaningfully. Returns ErrMissingRequiredFields naming every
// missing field, never just the first.
func (s *ArchiverService) ValidateForReissue(v *models.ManifestVersion, lines []*models.WasteLine) error {
	var missing []string

	if strings.TrimSpace(v.PublicNumber) == "" {
		missing = append(missing, "manifest number")
	}
	if strings.TrimSpace(v.Generator.Name) == "" {
		missing = append(missing, "generator name")
	}
	if strings.TrimSpace(v.Transporter.Name) == "" {
		missing = append(missing, "transporter name")
	}
	if strings.TrimSpace(v.Recipient.Name) == "" {
		missing = append(missing, "recipient name")
	}
	if len(lines) == 0 {
		missing = append(missing, "waste lines")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", models.ErrMissingRequiredFields, strings.Join(missing, ", "))
	}
	return nil
}

// BuildTextDump renders a deterministic plain-text representation of a
// version and its lines, used as the archival artifact when no document
// renderer is available.
func (s *ArchiverService) BuildTextDump(v *models.ManifestVersion, lines []*models.WasteLine) []byte {
	var b strings.Builder

	b.WriteString("HAZARDOUS WASTE MANIFEST\n")
	b.WriteString("========================\n\n")
	fmt.Fprintf(&b, "Number: %s\n", v.PublicNumber)
	fmt.Fprintf(&b, "Version: %d\n", v.VersionIndex)
	fmt.Fprintf(&b, "Status: %s\n", v.Status)
	fmt.Fprintf(&b, "Issued: %s\n", v.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Environmental registry: %s\n", v.EnvironmentalRegistry)
	if v.ChangeReason != "" {
		fmt.Fprintf(&b, "Change reason: %s\n", v.ChangeReason)
	}

	b.WriteString("\nGENERATOR\n---------\n")
	writePartyDump(&b, v.Generator)

	b.WriteString("\nTRANSPORTER\n-----------\n")
	writePartyDump(&b, v.Transporter)
	fmt.Fprintf(&b, "Authorization: %s\n", v.TransporterAuthorization)
	fmt.Fprintf(&b, "Transport permit: %s\n", v.TransportPermit)
	fmt.Fprintf(&b, "Vehicle: %s plate %s\n", v.VehicleType, v.PlateNumber)
	fmt.Fprintf(&b, "Route: %s\n", v.Route)

	b.WriteString("\nRECIPIENT\n---------\n")
	writePartyDump(&b, v.Recipient)
	fmt.Fprintf(&b, "Authorization: %s\n", v.RecipientAuthorization)
	fmt.Fprintf(&b, "Received by: %s\n", v.ReceiverName)
	if v.RecipientRemarks != "" {
		fmt.Fprintf(&b, "Remarks: %s\n", v.RecipientRemarks)
	}

	b.WriteString("\nWASTE LINES\n-----------\n")
	for i, line := range lines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line.Name)
		fmt.Fprintf(&b, "   Quantity: %.2f kg\n", line.QuantityKg)
		if letters := line.Hazard.Letters(); letters != "" {
			fmt.Fprintf(&b, "   Hazard (CRETIB): %s\n", letters)
		}
		fmt.Fprintf(&b, "   Packaging: %s %s\n", line.Packaging, line.PackagingCapacity)
		fmt.Fprintf(&b, "   Labeling: %s\n", line.LabelingText())
	}

	if v.SpecialInstructions != "" {
		b.WriteString("\nSPECIAL INSTRUCTIONS\n--------------------\n")
		b.WriteString(v.SpecialInstructions)
		b.WriteString("\n")
	}

	return []byte(b.String())
}

// Archive writes a history snapshot of the given version using the
// prepared artifact. The source version is not modified; the snapshot is
// bound to the lineage root, not the version row, so it survives if the
// version is later purged.
func (s *ArchiverService) Archive(ctx context.Context, v *models.ManifestVersion, lines []*models.WasteLine, artifact Artifact, createdBy string) (*models.HistorySnapshot, error) {
	if len(artifact.Content) == 0 {
		return nil, fmt.Errorf("%w: artifact %s has no content", models.ErrEmptyArtifact, artifact.Name)
	}

	snapshot := &models.HistorySnapshot{
		ID:                   uuid.New(),
		LineageRootID:        v.LineageRootID,
		VersionNumber:        v.VersionIndex,
		ArtifactKind:         artifact.Kind,
		ArtifactName:         artifact.Name,
		Artifact:             artifact.Content,
		PhysicalDocument:     v.PhysicalDocument,
		PhysicalDocumentName: v.PhysicalDocumentName,
		HadPhysicalDocument:  v.HasPhysicalDocument(),
		CapturedStatus:       v.Status,
		ChangeReason:         v.ChangeReason,
		PublicNumber:         v.PublicNumber,
		GeneratorName:        v.Generator.Name,
		TransporterName:      v.Transporter.Name,
		RecipientName:        v.Recipient.Name,
		LineCount:            len(lines),
		CreatedBy:            createdBy,
		CreatedAt:            s.now(),
	}

	if err := s.snapshots.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to archive version %d of %s: %w", v.VersionIndex, v.PublicNumber, err)
	}

	s.log.WithManifest(v.PublicNumber).Info("archived version snapshot",
		"version", v.VersionIndex,
		"artifact_kind", artifact.Kind,
		"line_count", len(lines))

	return snapshot, nil
}

func writePartyDump(b *strings.Builder, p models.Party) {
	fmt.Fprintf(b, "Name: %s\n", p.Name)
	addr := joinNonEmpty(" ", p.Street, p.ExteriorNumber, p.InteriorNumber)
	locality := joinNonEmpty(", ", p.District, p.Municipality, p.State, p.PostalCode)
	if addr != "" || locality != "" {
		fmt.Fprintf(b, "Address: %s\n", joinNonEmpty(", ", addr, locality))
	}
	if p.Phone != "" {
		fmt.Fprintf(b, "Phone: %s\n", p.Phone)
	}
	if p.Email != "" {
		fmt.Fprintf(b, "Email: %s\n", p.Email)
	}
	if p.ResponsibleName != "" {
		fmt.Fprintf(b, "Responsible: %s\n", p.ResponsibleName)
	}
	if p.SignDate != nil {
		fmt.Fprintf(b, "Signed: %s\n", p.SignDate.Format("2006-01-02"))
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
