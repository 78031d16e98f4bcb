package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTextDumpIsDeterministic(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusConfirmed)
	lines, err := store.ListByVersion(context.Background(), v.ID)
	require.NoError(t, err)

	svc := NewArchiverService(store, testLogger())
	first := svc.BuildTextDump(v, lines)
	second := svc.BuildTextDump(v, lines)
	assert.Equal(t, first, second)
}

func TestBuildTextDumpContent(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusInTransit)
	lines, err := store.ListByVersion(context.Background(), v.ID)
	require.NoError(t, err)

	svc := NewArchiverService(store, testLogger())
	dump := string(svc.BuildTextDump(v, lines))

	assert.Contains(t, dump, "DM-28042025")
	assert.Contains(t, dump, "DENSO MEXICO, S.A. DE C.V.")
	assert.Contains(t, dump, "Transportes Rojas")
	assert.Contains(t, dump, "Residuos Industriales del Bajío")
	assert.Contains(t, dump, "1. Spent solvent")
	assert.Contains(t, dump, "120.50 kg")
	assert.Contains(t, dump, "T, I")
	assert.Contains(t, dump, "2. Contaminated rags")

	// Sections appear in a fixed order
	gen := strings.Index(dump, "GENERATOR")
	tra := strings.Index(dump, "TRANSPORTER")
	rec := strings.Index(dump, "RECIPIENT")
	assert.True(t, gen < tra && tra < rec)
}

func TestValidateForReissueListsEveryMissingField(t *testing.T) {
	svc := NewArchiverService(newMemStore(), testLogger())

	err := svc.ValidateForReissue(&models.ManifestVersion{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMissingRequiredFields))
	for _, want := range []string{"manifest number", "generator name", "transporter name", "recipient name", "waste lines"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestArchiveRejectsEmptyArtifact(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusConfirmed)
	svc := NewArchiverService(store, testLogger())

	_, err := svc.Archive(context.Background(), v, nil, Artifact{Name: "empty.txt"}, "tester")
	assert.True(t, errors.Is(err, models.ErrEmptyArtifact))
}

func TestArchiveBindsSnapshotToLineage(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusConfirmed)
	svc := NewArchiverService(store, testLogger())
	ctx := context.Background()

	lines, err := store.ListByVersion(ctx, v.ID)
	require.NoError(t, err)

	snap, err := svc.Archive(ctx, v, lines, Artifact{
		Kind:    models.ArtifactTextDump,
		Name:    "Manifest_DM-28042025_v1_data.txt",
		Content: svc.BuildTextDump(v, lines),
	}, "tester")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, snap.ID)
	assert.Equal(t, v.LineageRootID, snap.LineageRootID)
	assert.Equal(t, v.VersionIndex, snap.VersionNumber)
	assert.Equal(t, v.PublicNumber, snap.PublicNumber)
	assert.Equal(t, v.Status, snap.CapturedStatus)
	assert.Equal(t, len(lines), snap.LineCount)
	assert.Equal(t, "tester", snap.CreatedBy)
	assert.True(t, snap.IsOrigin())

	// The archived version itself is untouched
	after, err := store.GetVersion(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, after.IsCurrent)
	assert.Equal(t, models.StatusConfirmed, after.Status)
}

func TestArchiveRejectsDuplicateVersionNumber(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusConfirmed)
	svc := NewArchiverService(store, testLogger())
	ctx := context.Background()

	artifact := Artifact{Kind: models.ArtifactTextDump, Name: "dump.txt", Content: []byte("x")}
	_, err := svc.Archive(ctx, v, nil, artifact, "tester")
	require.NoError(t, err)

	_, err = svc.Archive(ctx, v, nil, artifact, "tester")
	assert.Error(t, err)
}
