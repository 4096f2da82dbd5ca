package modelstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

func TestFilesystemStoreCicloCompleto(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	assert.NoError(t, err)

	exists, err := store.Exists()
	assert.NoError(t, err)
	assert.False(t, exists)

	_, err = store.LoadModel()
	assert.Error(t, err)

	model := &domain.RegressionModel{Slope: 12.5, Intercept: 830.2, Samples: 24}
	assert.NoError(t, store.SaveModel(model))

	exists, err = store.Exists()
	assert.NoError(t, err)
	assert.True(t, exists)

	loaded, err := store.LoadModel()
	assert.NoError(t, err)
	assert.Equal(t, model, loaded)

	metadata := &domain.ModelMetadata{
		TrainedAt:  "2024-06-15T08:00:00Z",
		Samples:    24,
		PeriodFrom: "2022-07",
		PeriodTo:   "2024-06",
	}
	assert.NoError(t, store.SaveMetadata(metadata))

	loadedMetadata, err := store.LoadMetadata()
	assert.NoError(t, err)
	assert.Equal(t, metadata, loadedMetadata)
}

func TestFilesystemStoreSobrescreveSemDeixarTemporarios(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	assert.NoError(t, err)

	assert.NoError(t, store.SaveModel(&domain.RegressionModel{Slope: 1}))
	assert.NoError(t, store.SaveModel(&domain.RegressionModel{Slope: 2}))

	loaded, err := store.LoadModel()
	assert.NoError(t, err)
	assert.Equal(t, 2.0, loaded.Slope)

	// A troca por rename não deixa arquivos temporários para trás.
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "regression_model.json", entries[0].Name())
}

func TestFilesystemStoreArquivoCorrompido(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir)
	assert.NoError(t, err)

	assert.NoError(t, os.WriteFile(filepath.Join(dir, "regression_model.json"), []byte("{corrupto"), 0o644))

	_, err = store.LoadModel()
	assert.Error(t, err)
}

func TestMemoryStoreIsolaCopias(t *testing.T) {
	store := NewMemoryStore()

	exists, err := store.Exists()
	assert.NoError(t, err)
	assert.False(t, exists)

	model := &domain.RegressionModel{Slope: 3, Samples: 10}
	assert.NoError(t, store.SaveModel(model))

	// Mutação posterior do original não afeta o que foi salvo.
	model.Slope = 99

	loaded, err := store.LoadModel()
	assert.NoError(t, err)
	assert.Equal(t, 3.0, loaded.Slope)

	_, err = store.LoadMetadata()
	assert.Error(t, err)

	assert.NoError(t, store.SaveMetadata(&domain.ModelMetadata{Samples: 10}))
	metadata, err := store.LoadMetadata()
	assert.NoError(t, err)
	assert.Equal(t, 10, metadata.Samples)
}
