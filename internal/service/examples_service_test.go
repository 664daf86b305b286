package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamplesServiceGetByStyle(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "tokyo_neon_street.jpg"), []byte("img"), 0o644))

	svc := NewExamplesService(root, map[string]string{"tokyo_neon_street": "Токио, неоновая улица"})

	example := svc.GetByStyle("tokyo_neon_street")
	require.NotNil(t, example)
	assert.Equal(t, "Токио, неоновая улица", example.Title)
	assert.Equal(t, filepath.Join(root, "tokyo_neon_street.jpg"), example.FilePath)
}

func TestExamplesServiceMissingStyle(t *testing.T) {
	svc := NewExamplesService(t.TempDir(), nil)
	assert.Nil(t, svc.GetByStyle("red_carpet_premiere"))
}

func TestExamplesServiceTitleFallsBackToID(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "dubai_rooftop.png"), []byte("img"), 0o644))

	svc := NewExamplesService(root, nil)
	example := svc.GetByStyle("dubai_rooftop")
	require.NotNil(t, example)
	assert.Equal(t, "dubai rooftop", example.Title)
}

func TestExamplesServiceCachesMiss(t *testing.T) {
	root := t.TempDir()
	svc := NewExamplesService(root, nil)

	assert.Nil(t, svc.GetByStyle("santorini_sunrise"))

	// A file appearing after a cached miss stays invisible until the entry
	// expires.
	require.NoError(t, os.WriteFile(filepath.Join(root, "santorini_sunrise.jpg"), []byte("img"), 0o644))
	assert.Nil(t, svc.GetByStyle("santorini_sunrise"))
}
