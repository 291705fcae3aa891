package hostmeta

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileLoader resolves a bare filename named by an `import` form
// against a configured set of additional files (§6). Results must
// depend only on the configured file set — the loader is stateless
// from the engine's point of view.
type FileLoader interface {
	// Resolve finds the file matching name, returning its contents.
	// ambiguous is set when more than one configured file matches.
	Resolve(name string) (contents string, fileID string, found bool, ambiguous bool)
}

// DirLoader resolves imports against a fixed set of directories,
// matching files by base name (with or without a `.bt` extension).
type DirLoader struct {
	Dirs []string
}

func (d *DirLoader) Resolve(name string) (string, string, bool, bool) {
	candidates := []string{name, name + ".bt"}
	var matches []string
	for _, dir := range d.Dirs {
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if _, err := os.Stat(p); err == nil {
				matches = append(matches, p)
			}
		}
	}
	if len(matches) == 0 {
		return "", "", false, false
	}
	if len(matches) > 1 {
		return "", "", true, true
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		return "", "", false, false
	}
	return string(data), matches[0], true, false
}

// MapLoader is an in-memory FileLoader used by tests, keyed by
// logical import name.
type MapLoader map[string]string

func (m MapLoader) Resolve(name string) (string, string, bool, bool) {
	if src, ok := m[name]; ok {
		return src, fmt.Sprintf("inline://import/%s", name), true, false
	}
	return "", "", false, false
}
