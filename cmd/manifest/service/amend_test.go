package service

import (
	"context"
	"errors"
	"testing"

	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmendDraft(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusDraft)
	svc := NewAmendService(store, testLogger())
	ctx := context.Background()

	patch := []byte(`[
		{"op": "replace", "path": "/plate_number", "value": "ABC-123-D"},
		{"op": "replace", "path": "/transporter/name", "value": "Nuevo Transporte SA"},
		{"op": "replace", "path": "/change_reason", "value": "corrected plate"}
	]`)

	amended, err := svc.AmendDraft(ctx, v.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "ABC-123-D", amended.PlateNumber)
	assert.Equal(t, "Nuevo Transporte SA", amended.Transporter.Name)
	assert.Equal(t, "corrected plate", amended.ChangeReason)

	// Persisted
	got, err := store.GetVersion(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC-123-D", got.PlateNumber)
}

func TestAmendDraftPreservesIdentity(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusDraft)
	svc := NewAmendService(store, testLogger())

	patch := []byte(`[{"op": "replace", "path": "/route", "value": "MX-57 north"}]`)
	amended, err := svc.AmendDraft(context.Background(), v.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, v.PublicNumber, amended.PublicNumber)
	assert.Equal(t, v.InternalSequence, amended.InternalSequence)
	assert.Equal(t, v.VersionIndex, amended.VersionIndex)
	assert.True(t, amended.IsCurrent)
}

func TestAmendDraftRejectsProtectedFields(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusDraft)
	svc := NewAmendService(store, testLogger())
	ctx := context.Background()

	for _, patch := range []string{
		`[{"op": "replace", "path": "/public_number", "value": "HACK-1"}]`,
		`[{"op": "replace", "path": "/version_index", "value": 9}]`,
		`[{"op": "add", "path": "/is_current", "value": false}]`,
	} {
		_, err := svc.AmendDraft(ctx, v.ID, []byte(patch))
		assert.True(t, errors.Is(err, models.ErrInvalidInput), "patch %s", patch)
	}
}

func TestAmendDraftRejectsMalformedPatch(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusDraft)
	svc := NewAmendService(store, testLogger())

	_, err := svc.AmendDraft(context.Background(), v.ID, []byte(`{"not": "a patch"}`))
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestAmendDraftRejectsNonDraft(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusConfirmed)
	svc := NewAmendService(store, testLogger())

	patch := []byte(`[{"op": "replace", "path": "/route", "value": "changed"}]`)
	_, err := svc.AmendDraft(context.Background(), v.ID, patch)
	assert.True(t, errors.Is(err, models.ErrInvalidState))
}

func TestAmendDraftRejectsSupersededVersion(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusDraft)
	svc := NewAmendService(store, testLogger())
	ctx := context.Background()

	_, err := store.Deactivate(ctx, v.ID, models.StatusDelivered)
	require.NoError(t, err)

	patch := []byte(`[{"op": "replace", "path": "/route", "value": "changed"}]`)
	_, err = svc.AmendDraft(ctx, v.ID, patch)
	assert.True(t, errors.Is(err, models.ErrNotCurrentVersion))
}
