package indexing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mathworks/MATLAB-language-server-sub001/internal/config"
)

func TestEnumerateFolders(t *testing.T) {
	dir, _ := writeWorkspace(t,
		"a.m",
		"sub/b.m",
		".git/objects/c.m",
		"slprj/generated.m",
		"notes.txt",
	)

	got := EnumerateFolders(context.Background(), []string{dir}, config.DefaultSettings())

	want := []string{
		filepath.Join(dir, "a.m"),
		filepath.Join(dir, "sub", "b.m"),
	}
	assert.Equal(t, want, got)
}

func TestEnumerateFolders_DeduplicatesOverlappingFolders(t *testing.T) {
	dir, _ := writeWorkspace(t, "a.m")

	got := EnumerateFolders(context.Background(), []string{dir, dir}, config.DefaultSettings())

	assert.Equal(t, []string{filepath.Join(dir, "a.m")}, got)
}

func TestEnumerateFolders_MissingFolderIsSkipped(t *testing.T) {
	dir, _ := writeWorkspace(t, "a.m")

	got := EnumerateFolders(context.Background(),
		[]string{filepath.Join(dir, "does-not-exist"), dir},
		config.DefaultSettings())

	assert.Equal(t, []string{filepath.Join(dir, "a.m")}, got)
}

func TestEnumerateFolders_CustomPatterns(t *testing.T) {
	dir, _ := writeWorkspace(t,
		"src/a.m",
		"src/legacy/old.m",
		"toolbox/b.m",
	)

	settings := config.DefaultSettings()
	settings.Include = []string{"src/**/*.m"}
	settings.Exclude = append(settings.Exclude, "**/legacy/**")

	got := EnumerateFolders(context.Background(), []string{dir}, settings)

	assert.Equal(t, []string{filepath.Join(dir, "src", "a.m")}, got)
}

func TestEnumerateFolders_BadExcludePatternDoesNotBreakScan(t *testing.T) {
	dir, _ := writeWorkspace(t, "a.m")

	settings := config.DefaultSettings()
	settings.Exclude = []string{"[unclosed"}

	got := EnumerateFolders(context.Background(), []string{dir}, settings)

	assert.Equal(t, []string{filepath.Join(dir, "a.m")}, got)
}

func TestPathWithin(t *testing.T) {
	assert.True(t, pathWithin("/ws/proj/a.m", "/ws/proj"))
	assert.True(t, pathWithin("/ws/proj/sub/a.m", "/ws/proj"))
	assert.False(t, pathWithin("/ws/other/a.m", "/ws/proj"))
	assert.False(t, pathWithin("/ws/projother/a.m", "/ws/proj"))
	assert.True(t, pathWithin("/ws/proj", "/ws/proj"))
}
