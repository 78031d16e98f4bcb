package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/logger"
)

// amendableHeader is the subset of version fields a draft amendment may
// touch. Identity, currency, status and version bookkeeping are never
// patchable.
type amendableHeader struct {
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
	ReceiverName           string `json:"receiver_name"`
	RecipientRemarks       string `json:"recipient_remarks"`
	SpecialInstructions    string `json:"special_instructions"`
	ChangeReason           string `json:"change_reason"`
}

// AmendService applies RFC 6902 patches to draft version headers.
type AmendService struct {
	store ManifestStore
	log   *logger.Logger
}

// NewAmendService creates a new amendment service
func NewAmendService(store ManifestStore, log *logger.Logger) *AmendService {
	return &AmendService{store: store, log: log}
}

// AmendDraft applies a JSON patch to the mutable header of a current
// draft version. Patches touching fields outside the amendable set are
// rejected as invalid input.
func (s *AmendService) AmendDraft(ctx context.Context, versionID uuid.UUID, patch []byte) (*models.ManifestVersion, error) {
	v, err := s.store.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	if !v.IsCurrent {
		return nil, fmt.Errorf("%w: version %d of %s is superseded", models.ErrNotCurrentVersion, v.VersionIndex, v.PublicNumber)
	}
	if v.Status != models.StatusDraft {
		return nil, fmt.Errorf("%w: %s is %s, only drafts can be amended", models.ErrInvalidState, v.PublicNumber, v.Status)
	}

	decoded, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed patch: %v", models.ErrInvalidInput, err)
	}

	doc, err := json.Marshal(headerOf(v))
	if err != nil {
		return nil, fmt.Errorf("failed to encode header of %s: %w", v.PublicNumber, err)
	}

	patched, err := decoded.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: patch does not apply: %v", models.ErrInvalidInput, err)
	}

	var header amendableHeader
	dec := json.NewDecoder(bytes.NewReader(patched))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("%w: patch introduced unknown fields: %v", models.ErrInvalidInput, err)
	}

	applyHeader(v, header)
	if err := s.store.UpdateHeader(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to update header of %s: %w", v.PublicNumber, err)
	}

	s.log.WithManifest(v.PublicNumber).Info("amended draft header",
		"version", v.VersionIndex, "operations", len(decoded))
	return v, nil
}

func headerOf(v *models.ManifestVersion) amendableHeader {
	return amendableHeader{
		EnvironmentalRegistry:    v.EnvironmentalRegistry,
		Generator:                v.Generator,
		Transporter:              v.Transporter,
		Recipient:                v.Recipient,
		TransporterAuthorization: v.TransporterAuthorization,
		TransportPermit:          v.TransportPermit,
		VehicleType:              v.VehicleType,
		PlateNumber:              v.PlateNumber,
		Route:                    v.Route,
		RecipientAuthorization:   v.RecipientAuthorization,
		ReceiverName:             v.ReceiverName,
		RecipientRemarks:         v.RecipientRemarks,
		SpecialInstructions:      v.SpecialInstructions,
		ChangeReason:             v.ChangeReason,
	}
}

func applyHeader(v *models.ManifestVersion, h amendableHeader) {
	v.EnvironmentalRegistry = h.EnvironmentalRegistry
	v.Generator = h.Generator
	v.Transporter = h.Transporter
	v.Recipient = h.Recipient
	v.TransporterAuthorization = h.TransporterAuthorization
	v.TransportPermit = h.TransportPermit
	v.VehicleType = h.VehicleType
	v.PlateNumber = h.PlateNumber
	v.Route = h.Route
	v.RecipientAuthorization = h.RecipientAuthorization
	v.ReceiverName = h.ReceiverName
	v.RecipientRemarks = h.RecipientRemarks
	v.SpecialInstructions = h.SpecialInstructions
	v.ChangeReason = h.ChangeReason
}
