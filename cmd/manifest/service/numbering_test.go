package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/resiflow/manifest/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New("error", "console")
}

func TestBaseCode(t *testing.T) {
	svc := NewNumberingService(newMemStore(), testLogger())
	date := time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		partyName string
		want      string
	}{
		{"legal suffixes stripped", "DENSO MEXICO, S.A. DE C.V.", "DM-28042025"},
		{"plain two words", "Gestora Metropolitana", "GM-28042025"},
		{"single significant word", "RECOLECTORA S.A. DE C.V.", "RE-28042025"},
		{"connectors dropped", "Transportes del Norte y Asociados", "TN-28042025"},
		{"accented names kept", "Química Ámbar", "QÁ-28042025"},
		{"all stop words falls back to raw", "S.A. DE C.V.", "SA-28042025"},
		{"extra words ignored", "Eco Verde Industrial de Occidente", "EV-28042025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.BaseCode(tt.partyName, date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBaseCodeEmptyName(t *testing.T) {
	svc := NewNumberingService(newMemStore(), testLogger())

	_, err := svc.BaseCode("   ", time.Now())
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestGeneratePublicNumberCollisions(t *testing.T) {
	store := newMemStore()
	svc := NewNumberingService(store, testLogger())
	ctx := context.Background()
	date := time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)

	first, err := svc.GeneratePublicNumber(ctx, "DENSO MEXICO, S.A. DE C.V.", date, 0)
	require.NoError(t, err)
	assert.Equal(t, "DM-28042025", first)

	// Persist the first lineage so the next generation sees the collision
	id := uuid.New()
	require.NoError(t, store.CreateVersion(ctx, &models.ManifestVersion{
		ID: id, LineageRootID: id, VersionIndex: 1, IsCurrent: true,
		PublicNumber: first, InternalSequence: 1, Status: models.StatusDraft,
	}))

	second, err := svc.GeneratePublicNumber(ctx, "DENSO MEXICO, S.A. DE C.V.", date, 0)
	require.NoError(t, err)
	assert.Equal(t, "DM-28042025-02", second)
}

func TestGeneratePublicNumberExplicitDisambiguator(t *testing.T) {
	store := newMemStore()
	svc := NewNumberingService(store, testLogger())
	ctx := context.Background()
	date := time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)

	id := uuid.New()
	require.NoError(t, store.CreateVersion(ctx, &models.ManifestVersion{
		ID: id, LineageRootID: id, VersionIndex: 1, IsCurrent: true,
		PublicNumber: "DM-28042025", InternalSequence: 1, Status: models.StatusDraft,
	}))

	got, err := svc.GeneratePublicNumber(ctx, "DENSO MEXICO, S.A. DE C.V.", date, 7)
	require.NoError(t, err)
	assert.Equal(t, "DM-28042025-07", got)
}

func TestReissuedVersionsDoNotInflateCollisionCount(t *testing.T) {
	store := newMemStore()
	svc := NewNumberingService(store, testLogger())
	ctx := context.Background()
	date := time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)

	rootID := uuid.New()
	require.NoError(t, store.CreateVersion(ctx, &models.ManifestVersion{
		ID: rootID, LineageRootID: rootID, VersionIndex: 1, IsCurrent: false,
		PublicNumber: "DM-28042025", InternalSequence: 1, Status: models.StatusDelivered,
	}))
	// A re-issued version shares the public number but is not version 1
	require.NoError(t, store.CreateVersion(ctx, &models.ManifestVersion{
		ID: uuid.New(), LineageRootID: rootID, VersionIndex: 2, IsCurrent: true,
		PublicNumber: "DM-28042025", InternalSequence: 1, Status: models.StatusDraft,
	}))

	got, err := svc.GeneratePublicNumber(ctx, "DENSO MEXICO, S.A. DE C.V.", date, 0)
	require.NoError(t, err)
	assert.Equal(t, "DM-28042025-02", got)
}

func TestNextInternalSequenceMonotonic(t *testing.T) {
	svc := NewNumberingService(newMemStore(), testLogger())
	ctx := context.Background()

	first, err := svc.NextInternalSequence(ctx)
	require.NoError(t, err)
	second, err := svc.NextInternalSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, first+1, second)
}
