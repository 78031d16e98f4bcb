package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/config"
	"github.com/resiflow/manifest/common/logger"
	"github.com/resiflow/manifest/common/validation"
)

// LineInput is the caller-facing shape of one waste line on lineage
// creation.
type LineInput struct {
	Name              string               `json:"name"`
	QuantityKg        float64              `json:"quantity_kg"`
	Hazard            models.HazardClass   `json:"hazard"`
	Packaging         models.PackagingKind `json:"packaging"`
	PackagingCapacity string               `json:"packaging_capacity"`
	LabeledYes        bool                 `json:"labeled_yes"`
	LabeledNo         bool                 `json:"labeled_no"`
}

// CreateLineageRequest carries everything needed to open a new manifest
// lineage at version 1.
type CreateLineageRequest struct {
	ReferenceDate         time.Time    `json:"reference_date"`
	Disambiguator         int          `json:"disambiguator"`
	EnvironmentalRegistry string       `json:"environmental_registry"`
	Generator             models.Party `json:"generator"`
	Transporter           models.Party `json:"transporter"`
	Recipient             models.Party `json:"recipient"`

	TransporterAuthorization string `json:"transporter_authorization"`
	TransportPermit          string `json:"transport_permit"`
	VehicleType              string `json:"vehicle_type"`
	PlateNumber              string `json:"plate_number"`
	Route                    string `json:"route"`

	RecipientAuthorization string `json:"recipient_authorization"`
	SpecialInstructions    string `json:"special_instructions"`

	CompanyID string      `json:"company_id"`
	CreatedBy string      `json:"created_by"`
	Lines     []LineInput `json:"lines"`
}

// ManifestService owns lineage creation and version reads.
type ManifestService struct {
	store     ManifestStore
	lines     WasteLineStore
	numbering *NumberingService
	validator *validation.WasteRuleValidator
	defaults  config.PartyDefaultsConfig
	tx        TxRunner
	log       *logger.Logger
	now       func() time.Time
}

// NewManifestService creates a new manifest service
func NewManifestService(store ManifestStore, lines WasteLineStore, numbering *NumberingService, validator *validation.WasteRuleValidator, defaults config.PartyDefaultsConfig, tx TxRunner, log *logger.Logger) *ManifestService {
	return &ManifestService{
		store:     store,
		lines:     lines,
		numbering: numbering,
		validator: validator,
		defaults:  defaults,
		tx:        tx,
		log:       log,
		now:       time.Now,
	}
}

// CreateLineage opens a new manifest lineage: allocates the internal
// sequence, generates the public number, and writes version 1 with its
// waste lines in one transaction.
func (s *ManifestService) CreateLineage(ctx context.Context, req CreateLineageRequest) (*models.ManifestVersion, error) {
	if strings.TrimSpace(req.Generator.Name) == "" {
		return nil, fmt.Errorf("%w: generator name is required", models.ErrInvalidInput)
	}

	s.applyDefaults(&req)

	for i, line := range req.Lines {
		if err := s.validateLine(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	refDate := req.ReferenceDate
	if refDate.IsZero() {
		refDate = s.now()
	}

	now := s.now()
	id := uuid.New()
	v := &models.ManifestVersion{
		ID:            id,
		VersionIndex:  1,
		LineageRootID: id,
		IsCurrent:     true,
		Status:        models.StatusDraft,

		EnvironmentalRegistry: req.EnvironmentalRegistry,
		Generator:             req.Generator,
		Transporter:           req.Transporter,
		Recipient:             req.Recipient,

		TransporterAuthorization: req.TransporterAuthorization,
		TransportPermit:          req.TransportPermit,
		VehicleType:              req.VehicleType,
		PlateNumber:              req.PlateNumber,
		Route:                    req.Route,

		RecipientAuthorization: req.RecipientAuthorization,
		SpecialInstructions:    req.SpecialInstructions,

		CompanyID: req.CompanyID,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	base, err := s.numbering.BaseCode(req.Generator.Name, refDate)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Serializes concurrent creations sharing this base so the
		// collision count below stays accurate through the insert.
		if err := s.store.LockNumberBase(ctx, base); err != nil {
			return fmt.Errorf("failed to lock number base %s: %w", base, err)
		}

		number, err := s.numbering.ResolveCollision(ctx, base, req.Disambiguator)
		if err != nil {
			return err
		}
		v.PublicNumber = number

		seq, err := s.numbering.NextInternalSequence(ctx)
		if err != nil {
			return err
		}
		v.InternalSequence = seq

		if err := s.store.CreateVersion(ctx, v); err != nil {
			return fmt.Errorf("failed to create lineage %s: %w", number, err)
		}

		wasteLines := make([]*models.WasteLine, 0, len(req.Lines))
		for i, in := range req.Lines {
			wasteLines = append(wasteLines, &models.WasteLine{
				ID:                uuid.New(),
				VersionID:         v.ID,
				Name:              in.Name,
				QuantityKg:        in.QuantityKg,
				Hazard:            in.Hazard,
				Packaging:         in.Packaging,
				PackagingCapacity: in.PackagingCapacity,
				LabeledYes:        in.LabeledYes,
				LabeledNo:         in.LabeledNo,
				Position:          i + 1,
			})
		}
		if len(wasteLines) > 0 {
			if err := s.lines.CreateLines(ctx, wasteLines); err != nil {
				return fmt.Errorf("failed to create lines of %s: %w", number, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithManifest(v.PublicNumber).Info("created manifest lineage",
		"lineage", v.LineageRootID,
		"sequence", v.InternalSequence,
		"lines", len(req.Lines))

	return v, nil
}

// Get returns a single version by id.
func (s *ManifestService) Get(ctx context.Context, versionID uuid.UUID) (*models.ManifestVersion, error) {
	return s.store.GetVersion(ctx, versionID)
}

// Current returns the one current version of a lineage.
func (s *ManifestService) Current(ctx context.Context, lineageRootID uuid.UUID) (*models.ManifestVersion, error) {
	return s.store.CurrentVersion(ctx, lineageRootID)
}

// ListLineage returns every version of a lineage, newest first.
func (s *ManifestService) ListLineage(ctx context.Context, lineageRootID uuid.UUID) ([]*models.ManifestVersion, error) {
	return s.store.ListLineage(ctx, lineageRootID)
}

// Lines returns the waste lines of a version in position order.
func (s *ManifestService) Lines(ctx context.Context, versionID uuid.UUID) ([]*models.WasteLine, error) {
	return s.lines.ListByVersion(ctx, versionID)
}

// AttachPhysicalDocument stores a scanned document on the current version.
// Superseded versions keep whatever was archived with them.
func (s *ManifestService) AttachPhysicalDocument(ctx context.Context, versionID uuid.UUID, doc []byte, name string) error {
	if len(doc) == 0 {
		return fmt.Errorf("%w: document content is empty", models.ErrInvalidInput)
	}

	v, err := s.store.GetVersion(ctx, versionID)
	if err != nil {
		return err
	}
	if !v.IsCurrent {
		return fmt.Errorf("%w: documents attach to the current version only", models.ErrNotCurrentVersion)
	}

	if err := s.store.SetPhysicalDocument(ctx, versionID, doc, name); err != nil {
		return fmt.Errorf("failed to attach document to %s: %w", v.PublicNumber, err)
	}

	s.log.WithManifest(v.PublicNumber).Info("attached physical document",
		"version", v.VersionIndex, "name", name, "bytes", len(doc))
	return nil
}

func (s *ManifestService) applyDefaults(req *CreateLineageRequest) {
	if req.Transporter.Name == "" {
		req.Transporter.Name = s.defaults.TransporterName
	}
	if req.TransporterAuthorization == "" {
		req.TransporterAuthorization = s.defaults.TransporterAuthorization
	}
	if req.TransportPermit == "" {
		req.TransportPermit = s.defaults.TransportPermit
	}
	if req.Recipient.Name == "" {
		req.Recipient.Name = s.defaults.RecipientName
	}
	if req.RecipientAuthorization == "" {
		req.RecipientAuthorization = s.defaults.RecipientAuthorization
	}
}

func (s *ManifestService) validateLine(in LineInput) error {
	if s.validator == nil {
		return nil
	}
	return s.validator.Validate(map[string]any{
		"name":        in.Name,
		"quantity_kg": in.QuantityKg,
		"labeled_yes": in.LabeledYes,
		"labeled_no":  in.LabeledNo,
		"packaging":   string(in.Packaging),
	})
}
