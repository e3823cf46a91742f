package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "draft: \"7\"\nassertFormat: true\n")
	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "7", cfg.Draft)
	assert.Equal(t, "flag", cfg.Output, "absent fields keep their default")
	assert.True(t, cfg.AssertFormat)
	assert.False(t, cfg.Insecure)
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(path, true)
	var merr *MissingConfigError
	assert.ErrorAs(t, err, &merr)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "bad yaml",
			content: "draft: [",
			check: func(t *testing.T, err error) {
				var yerr *InvalidYAMLError
				assert.ErrorAs(t, err, &yerr)
			},
		},
		{
			name:    "unknown draft",
			content: "draft: \"2019\"",
			check: func(t *testing.T, err error) {
				var verr *InvalidValueError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "draft", verr.Property)
				assert.Contains(t, err.Error(), "4, 6, 7, 2020")
			},
		},
		{
			name:    "unknown output",
			content: "output: basic",
			check: func(t *testing.T, err error) {
				var verr *InvalidValueError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "output", verr.Property)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), true)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
