package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleHappyPath(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusDraft)
	svc := NewLifecycleService(store, testLogger())
	ctx := context.Background()

	confirmed, err := svc.Confirm(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	inTransit, err := svc.MarkInTransit(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInTransit, inTransit.Status)

	delivered, err := svc.MarkDelivered(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, delivered.Status)
	assert.True(t, delivered.Status.Terminal())
}

func TestLifecycleRejectsSkippedStates(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusDraft)
	svc := NewLifecycleService(store, testLogger())
	ctx := context.Background()

	// draft cannot jump straight to in_transit or delivered
	_, err := svc.MarkInTransit(ctx, v.ID)
	assert.True(t, errors.Is(err, models.ErrInvalidState))

	_, err = svc.MarkDelivered(ctx, v.ID)
	assert.True(t, errors.Is(err, models.ErrInvalidState))
}

func TestLifecycleTerminalStatesAreFinal(t *testing.T) {
	svc := NewLifecycleService(newMemStore(), testLogger())
	ctx := context.Background()

	for _, terminal := range []models.Status{models.StatusDelivered, models.StatusCancelled} {
		store := newMemStore()
		v := seedLineage(t, store, terminal)
		svc = NewLifecycleService(store, testLogger())

		_, err := svc.Confirm(ctx, v.ID)
		assert.True(t, errors.Is(err, models.ErrInvalidState), "from %s", terminal)

		_, err = svc.Cancel(ctx, v.ID)
		assert.True(t, errors.Is(err, models.ErrInvalidState), "from %s", terminal)
	}
}

func TestLifecycleCancelFromAnyActiveState(t *testing.T) {
	ctx := context.Background()

	for _, active := range []models.Status{models.StatusDraft, models.StatusConfirmed, models.StatusInTransit} {
		store := newMemStore()
		v := seedLineage(t, store, active)
		svc := NewLifecycleService(store, testLogger())

		cancelled, err := svc.Cancel(ctx, v.ID)
		require.NoError(t, err, "from %s", active)
		assert.Equal(t, models.StatusCancelled, cancelled.Status)
	}
}

func TestLifecycleRejectsSupersededVersion(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusDraft)
	svc := NewLifecycleService(store, testLogger())
	ctx := context.Background()

	_, err := store.Deactivate(ctx, v.ID, models.StatusDelivered)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, v.ID)
	assert.True(t, errors.Is(err, models.ErrNotCurrentVersion))
}

func TestLifecycleUnknownVersion(t *testing.T) {
	svc := NewLifecycleService(newMemStore(), testLogger())

	_, err := svc.Confirm(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
