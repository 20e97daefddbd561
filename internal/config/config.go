// Package config holds the server settings consumed by the indexing
// subsystem. Settings come from two places: server-side defaults, optionally
// loaded from a .matlabls.kdl file, and live client settings pushed over the
// protocol. Consumers re-read the active settings per operation so that
// client-side changes take effect without a restart.
package config

import (
	"sync"
)

// Default values for the indexing subsystem.
const (
	DefaultDebounceMs     = 500
	DefaultMaxFileSize    = 0 // 0 = unlimited analysis
	DefaultPollingDelayMs = 50
)

// Settings is one immutable snapshot of the server configuration.
type Settings struct {
	// IndexWorkspace enables workspace-wide background indexing.
	IndexWorkspace bool

	// MaxFileSizeForAnalysis caps the engine's per-file analysis work in
	// bytes. 0 means unlimited.
	MaxFileSizeForAnalysis int

	// DebounceMs is the per-document re-index debounce delay.
	DebounceMs int

	// WatchMode enables fsnotify-based re-indexing of files changed on disk
	// outside the editor.
	WatchMode bool

	// Include and Exclude are doublestar globs applied during workspace file
	// enumeration, relative to each workspace folder.
	Include []string
	Exclude []string
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		IndexWorkspace:         true,
		MaxFileSizeForAnalysis: DefaultMaxFileSize,
		DebounceMs:             DefaultDebounceMs,
		WatchMode:              false,
		Include:                []string{"**/*.m"},
		Exclude: []string{
			"**/.git/**",
			"**/resources/**",
			"**/slprj/**",
			"**/codegen/**",
		},
	}
}

// Manager holds the active settings and supports live replacement. Get
// returns a value snapshot; callers never observe a half-applied update.
type Manager struct {
	mu sync.RWMutex
	s  Settings
}

// NewManager creates a manager seeded with the given settings.
func NewManager(s Settings) *Manager {
	normalize(&s)
	return &Manager{s: s}
}

// Get returns the current settings snapshot.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s
}

// Replace swaps in a full new settings snapshot.
func (m *Manager) Replace(s Settings) {
	normalize(&s)
	m.mu.Lock()
	m.s = s
	m.mu.Unlock()
}

// ApplyClientSettings overlays settings pushed by the editor client onto the
// current snapshot. Unknown keys are ignored.
func (m *Manager) ApplyClientSettings(raw map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := raw["indexWorkspace"].(bool); ok {
		m.s.IndexWorkspace = v
	}
	if v, ok := raw["maxFileSizeForAnalysis"].(float64); ok && v >= 0 {
		m.s.MaxFileSizeForAnalysis = int(v)
	}
}

func normalize(s *Settings) {
	if s.DebounceMs <= 0 {
		s.DebounceMs = DefaultDebounceMs
	}
	if s.MaxFileSizeForAnalysis < 0 {
		s.MaxFileSizeForAnalysis = 0
	}
	if len(s.Include) == 0 {
		s.Include = []string{"**/*.m"}
	}
}
