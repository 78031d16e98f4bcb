package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/logger"
)

// ReissueService performs copy-on-write re-issuance: archive the current
// version, deactivate it, and open a fresh draft version in its lineage.
type ReissueService struct {
	store    ManifestStore
	lines    WasteLineStore
	archiver *ArchiverService
	renderer DocumentRenderer
	tx       TxRunner
	log      *logger.Logger
	now      func() time.Time
}

// NewReissueService creates a new re-issuance service
func NewReissueService(store ManifestStore, lines WasteLineStore, archiver *ArchiverService, renderer DocumentRenderer, tx TxRunner, log *logger.Logger) *ReissueService {
	return &ReissueService{
		store:    store,
		lines:    lines,
		archiver: archiver,
		renderer: renderer,
		tx:       tx,
		log:      log,
		now:      time.Now,
	}
}

// Reissue supersedes the given version with a new draft carrying the same
// public number and internal sequence. useDocument selects the rendered
// document as the archival artifact; otherwise a plain-text dump is
// archived. The archive, clone and deactivation all commit atomically:
// any failure leaves the old version current and untouched.
func (s *ReissueService) Reissue(ctx context.Context, versionID uuid.UUID, useDocument bool, actor string) (*models.ManifestVersion, error) {
	old, err := s.store.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	if !old.IsCurrent {
		return nil, fmt.Errorf("%w: version %d of %s is already superseded", models.ErrNotCurrentVersion, old.VersionIndex, old.PublicNumber)
	}
	if old.Status == models.StatusDraft {
		return nil, fmt.Errorf("%w: %s is still a draft and can be edited directly", models.ErrInvalidState, old.PublicNumber)
	}

	oldLines, err := s.lines.ListByVersion(ctx, old.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines of %s: %w", old.PublicNumber, err)
	}

	if err := s.archiver.ValidateForReissue(old, oldLines); err != nil {
		return nil, err
	}

	artifact, err := s.buildArtifact(ctx, old, oldLines, useDocument)
	if err != nil {
		return nil, err
	}

	next := cloneForReissue(old, s.now())
	next.CreatedBy = actor

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Snapshot first: the archive must exist before is_current clears.
		if _, err := s.archiver.Archive(ctx, old, oldLines, artifact, actor); err != nil {
			return err
		}

		// Deactivation is conditional on the version still being current,
		// so of two concurrent re-issues of the same lineage the loser
		// fails here and rolls back. It also must precede the successor
		// insert: only one current version per lineage may exist at any
		// point, even mid-transaction. The superseded version is forced
		// to delivered regardless of its prior status; cancelled versions
		// lose that distinction in listings, which only the archive
		// snapshot preserves.
		deactivated, err := s.store.Deactivate(ctx, old.ID, models.StatusDelivered)
		if err != nil {
			return fmt.Errorf("failed to deactivate version %d of %s: %w", old.VersionIndex, old.PublicNumber, err)
		}
		if !deactivated {
			return fmt.Errorf("%w: version %d of %s was superseded concurrently", models.ErrNotCurrentVersion, old.VersionIndex, old.PublicNumber)
		}

		if err := s.store.CreateVersion(ctx, next); err != nil {
			return fmt.Errorf("failed to create version %d of %s: %w", next.VersionIndex, next.PublicNumber, err)
		}

		newLines := make([]*models.WasteLine, 0, len(oldLines))
		for _, line := range oldLines {
			newLines = append(newLines, line.CloneFor(next.ID))
		}
		if err := s.lines.CreateLines(ctx, newLines); err != nil {
			return fmt.Errorf("failed to copy lines of %s: %w", next.PublicNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithManifest(next.PublicNumber).Info("re-issued manifest",
		"lineage", next.LineageRootID,
		"from_version", old.VersionIndex,
		"to_version", next.VersionIndex,
		"actor", actor)

	return next, nil
}

// buildArtifact prepares the archival payload. Rendering failures are
// surfaced as-is so the caller can retry with the text-dump path.
func (s *ReissueService) buildArtifact(ctx context.Context, v *models.ManifestVersion, lines []*models.WasteLine, useDocument bool) (Artifact, error) {
	if useDocument {
		if s.renderer == nil {
			return Artifact{}, fmt.Errorf("%w: no document renderer configured", models.ErrTemplateNotFound)
		}
		doc, err := s.renderer.Render(ctx, DefaultTemplateRef, v, lines)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{
			Kind:    models.ArtifactDocument,
			Name:    fmt.Sprintf("Manifest_%s_v%d.%s", v.PublicNumber, v.VersionIndex, doc.Extension),
			Content: doc.Content,
		}, nil
	}

	return Artifact{
		Kind:    models.ArtifactTextDump,
		Name:    fmt.Sprintf("Manifest_%s_v%d_data.txt", v.PublicNumber, v.VersionIndex),
		Content: s.archiver.BuildTextDump(v, lines),
	}, nil
}

// cloneForReissue builds the successor version. Fields are copied by
// explicit allowlist: identity, currency, status, the physical document
// and the change reason are never inherited.
func cloneForReissue(old *models.ManifestVersion, now time.Time) *models.ManifestVersion {
	return &models.ManifestVersion{
		ID:               uuid.New(),
		InternalSequence: old.InternalSequence,
		PublicNumber:     old.PublicNumber,
		VersionIndex:     old.VersionIndex + 1,
		LineageRootID:    old.LineageRootID,
		IsCurrent:        true,
		Status:           models.StatusDraft,

		EnvironmentalRegistry: old.EnvironmentalRegistry,
		Generator:             old.Generator,
		Transporter:           old.Transporter,
		Recipient:             old.Recipient,

		TransporterAuthorization: old.TransporterAuthorization,
		TransportPermit:          old.TransportPermit,
		VehicleType:              old.VehicleType,
		PlateNumber:              old.PlateNumber,
		Route:                    old.Route,

		RecipientAuthorization: old.RecipientAuthorization,
		ReceiverName:           old.ReceiverName,
		RecipientRemarks:       old.RecipientRemarks,
		SpecialInstructions:    old.SpecialInstructions,

		CompanyID: old.CompanyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
