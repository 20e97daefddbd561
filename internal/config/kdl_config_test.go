package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lserrors "github.com/mathworks/MATLAB-language-server-sub001/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadKDLInto(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
index {
    workspace false
    max_file_size 100000
    debounce_ms 250
    watch true
}
include "src/**/*.m" "toolbox/**/*.m"
exclude "**/legacy/**"
`)

	s := DefaultSettings()
	require.NoError(t, loadKDLInto(&s, path))

	assert.False(t, s.IndexWorkspace)
	assert.Equal(t, 100000, s.MaxFileSizeForAnalysis)
	assert.Equal(t, 250, s.DebounceMs)
	assert.True(t, s.WatchMode)
	assert.Equal(t, []string{"src/**/*.m", "toolbox/**/*.m"}, s.Include)
	assert.Contains(t, s.Exclude, "**/legacy/**")
	// Configured excludes extend the defaults rather than replace them.
	assert.Contains(t, s.Exclude, "**/.git/**")
}

func TestLoadKDLInto_MissingFileIsNoop(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, loadKDLInto(&s, filepath.Join(t.TempDir(), ConfigFileName)))
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadFile_MissingFileIsAnError(t *testing.T) {
	s := DefaultSettings()
	err := LoadFile(&s, filepath.Join(t.TempDir(), "nope.kdl"))
	require.Error(t, err)
	var cfgErr *lserrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
index {
    debounce_ms 75
}
`)
	s := DefaultSettings()
	require.NoError(t, LoadFile(&s, path))
	assert.Equal(t, 75, s.DebounceMs)
}

func TestLoadKDLInto_MalformedFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `index { watch`)
	s := DefaultSettings()
	err := loadKDLInto(&s, path)
	require.Error(t, err)
	var cfgErr *lserrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadKDLInto_PartialOverlay(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
index {
    debounce_ms 100
}
`)
	s := DefaultSettings()
	require.NoError(t, loadKDLInto(&s, path))
	assert.Equal(t, 100, s.DebounceMs)
	assert.True(t, s.IndexWorkspace)
	assert.Equal(t, []string{"**/*.m"}, s.Include)
}
