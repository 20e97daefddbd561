package config

import (
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	lserrors "github.com/mathworks/MATLAB-language-server-sub001/internal/errors"
)

// ConfigFileName is the server-side defaults file looked up in the user's
// home directory and in the workspace root.
const ConfigFileName = ".matlabls.kdl"

// Load builds the effective default settings: built-ins, overlaid with the
// home-directory config file, overlaid with the workspace config file.
// Missing files are not errors.
func Load(workspaceRoot string) (Settings, error) {
	s := DefaultSettings()

	if home, err := os.UserHomeDir(); err == nil {
		if err := loadKDLInto(&s, filepath.Join(home, ConfigFileName)); err != nil {
			return s, err
		}
	}

	if workspaceRoot != "" {
		if err := loadKDLInto(&s, filepath.Join(workspaceRoot, ConfigFileName)); err != nil {
			return s, err
		}
	}

	return s, nil
}

// LoadFile overlays an explicitly named config file onto s. Unlike Load, a
// missing file here is an error: the user asked for this file.
func LoadFile(s *Settings, path string) error {
	if _, err := os.Stat(path); err != nil {
		return lserrors.NewConfigError("file", path, err)
	}
	return loadKDLInto(s, path)
}

// loadKDLInto overlays the settings found at path onto s. A missing file is
// a no-op.
func loadKDLInto(s *Settings, path string) error {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return lserrors.NewConfigError("file", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return lserrors.NewConfigError("file", path, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workspace":
					if b, ok := firstBoolArg(cn); ok {
						s.IndexWorkspace = b
					}
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok && v >= 0 {
						s.MaxFileSizeForAnalysis = v
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok && v > 0 {
						s.DebounceMs = v
					}
				case "watch":
					if b, ok := firstBoolArg(cn); ok {
						s.WatchMode = b
					}
				}
			}
		case "include":
			if patterns := stringArgs(n); len(patterns) > 0 {
				s.Include = patterns
			}
		case "exclude":
			s.Exclude = append(s.Exclude, stringArgs(n)...)
		}
	}

	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func stringArgs(n *document.Node) []string {
	var out []string
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
