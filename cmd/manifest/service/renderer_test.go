package service

import (
	"context"
	"errors"
	"testing"

	"github.com/resiflow/manifest/cmd/manifest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRendererDefaultTemplate(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusConfirmed)
	lines, err := store.ListByVersion(context.Background(), v.ID)
	require.NoError(t, err)

	r := NewTemplateRenderer()
	out, err := r.Render(context.Background(), "", v, lines)
	require.NoError(t, err)

	s := string(out.Content)
	assert.Contains(t, s, "DM-28042025")
	assert.Contains(t, s, "DENSO MEXICO, S.A. DE C.V.")
	assert.Contains(t, s, "Spent solvent")
	assert.Equal(t, "txt", out.Extension)
}

func TestTemplateRendererUnknownTemplate(t *testing.T) {
	r := NewTemplateRenderer()

	_, err := r.Render(context.Background(), "missing", &models.ManifestVersion{}, nil)
	assert.True(t, errors.Is(err, models.ErrTemplateNotFound))
}

func TestTemplateRendererRegister(t *testing.T) {
	store := newMemStore()
	v := seedLineage(t, store, models.StatusConfirmed)

	r := NewTemplateRenderer()
	require.NoError(t, r.Register("compact", "{{.Version.PublicNumber}}"))

	out, err := r.Render(context.Background(), "compact", v, nil)
	require.NoError(t, err)
	assert.Equal(t, "DM-28042025", string(out.Content))

	err = r.Register("broken", "{{.Unclosed")
	assert.True(t, errors.Is(err, models.ErrRenderError))
}

func TestTemplateRendererEmptyOutput(t *testing.T) {
	r := NewTemplateRenderer()
	require.NoError(t, r.Register("blank", ""))

	_, err := r.Render(context.Background(), "blank", &models.ManifestVersion{}, nil)
	assert.True(t, errors.Is(err, models.ErrEmptyArtifact))
}
