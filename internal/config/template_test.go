package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkidots/pipeline-api/internal/config"
	"github.com/arkidots/pipeline-api/internal/domain"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadStageTemplate(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		template, err := config.LoadStageTemplate("")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultStageTemplate, template)
	})

	t.Run("missing file uses default", func(t *testing.T) {
		template, err := config.LoadStageTemplate(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultStageTemplate, template)
	})

	t.Run("valid file", func(t *testing.T) {
		path := writeTemplate(t, `
stages:
  - name: Proposal Shared
    milestone: Milestone 1
  - name: Site Measurements
    notes: Internal
    milestone: Milestone 2
`)
		template, err := config.LoadStageTemplate(path)
		require.NoError(t, err)
		require.Len(t, template, 2)
		assert.Equal(t, "Proposal Shared", template[0].Name)
		assert.Equal(t, "Milestone 1", template[0].Milestone)
		assert.Equal(t, "Internal", template[1].Notes)
	})

	t.Run("no stages is an error", func(t *testing.T) {
		path := writeTemplate(t, "stages: []\n")
		_, err := config.LoadStageTemplate(path)
		assert.Error(t, err)
	})

	t.Run("nameless stage is an error", func(t *testing.T) {
		path := writeTemplate(t, `
stages:
  - milestone: Milestone 1
`)
		_, err := config.LoadStageTemplate(path)
		assert.Error(t, err)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := writeTemplate(t, "stages: [unclosed\n")
		_, err := config.LoadStageTemplate(path)
		assert.Error(t, err)
	})
}
