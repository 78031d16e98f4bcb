package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/logger"
)

// allowedTransitions is the manifest lifecycle state machine. Terminal
// states (delivered, cancelled) have no outgoing edges.
var allowedTransitions = map[models.Status][]models.Status{
	models.StatusDraft:     {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusInTransit, models.StatusCancelled},
	models.StatusInTransit: {models.StatusDelivered, models.StatusCancelled},
}

// LifecycleService moves manifest versions through their status
// transitions.
type LifecycleService struct {
	store ManifestStore
	log   *logger.Logger
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(store ManifestStore, log *logger.Logger) *LifecycleService {
	return &LifecycleService{store: store, log: log}
}

// Transition moves a version from its current status to the target,
// rejecting edges the state machine does not allow. Only the current
// version of a lineage may change status.
func (s *LifecycleService) Transition(ctx context.Context, versionID uuid.UUID, target models.Status) (*models.ManifestVersion, error) {
	v, err := s.store.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}

	if !v.IsCurrent {
		return nil, fmt.Errorf("%w: version %s of %s is superseded", models.ErrNotCurrentVersion, versionID, v.PublicNumber)
	}

	if !transitionAllowed(v.Status, target) {
		return nil, fmt.Errorf("%w: cannot move %s from %s to %s", models.ErrInvalidState, v.PublicNumber, v.Status, target)
	}

	if err := s.store.SetStatus(ctx, versionID, target); err != nil {
		return nil, fmt.Errorf("failed to set status of %s: %w", v.PublicNumber, err)
	}

	s.log.WithManifest(v.PublicNumber).Info("status transition",
		"version", v.VersionIndex, "from", v.Status, "to", target)

	v.Status = target
	return v, nil
}

// Confirm moves a draft version to confirmed.
func (s *LifecycleService) Confirm(ctx context.Context, versionID uuid.UUID) (*models.ManifestVersion, error) {
	return s.Transition(ctx, versionID, models.StatusConfirmed)
}

// MarkInTransit moves a confirmed version to in_transit.
func (s *LifecycleService) MarkInTransit(ctx context.Context, versionID uuid.UUID) (*models.ManifestVersion, error) {
	return s.Transition(ctx, versionID, models.StatusInTransit)
}

// MarkDelivered moves an in-transit version to delivered.
func (s *LifecycleService) MarkDelivered(ctx context.Context, versionID uuid.UUID) (*models.ManifestVersion, error) {
	return s.Transition(ctx, versionID, models.StatusDelivered)
}

// Cancel moves any non-terminal version to cancelled.
func (s *LifecycleService) Cancel(ctx context.Context, versionID uuid.UUID) (*models.ManifestVersion, error) {
	return s.Transition(ctx, versionID, models.StatusCancelled)
}

func transitionAllowed(from, to models.Status) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
