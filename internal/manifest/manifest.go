package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Manifest holds paths relative to the walked root, with Windows separators.
type Manifest struct {
	// Directories are listed parents first.
	Directories []string
	// Files are listed in discovery order.
	Files []string
}

// Build walks root breadth-first with an explicit queue of pending
// directories. Symbolic links are skipped, not followed, and so is anything
// that is neither a regular file nor a directory.
func Build(root string) (*Manifest, error) {
	m := &Manifest{
		Directories: []string{},
		Files:       []string{},
	}

	// Native relative paths waiting to be scanned; "" is root itself.
	pending := []string{""}

	for len(pending) > 0 {
		prefix := pending[0]
		pending = pending[1:]

		entries, err := os.ReadDir(filepath.Join(root, prefix))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", filepath.Join(root, prefix), err)
		}

		for _, entry := range entries {
			rel := filepath.Join(prefix, entry.Name())
			mode := entry.Type()

			switch {
			case mode&os.ModeSymlink != 0:
				continue
			case mode.IsDir():
				m.Directories = append(m.Directories, toWindows(rel))
				pending = append(pending, rel)
			case mode.IsRegular():
				m.Files = append(m.Files, toWindows(rel))
			}
		}
	}

	return m, nil
}

// RemovalOrder returns the directories children first.
func (m *Manifest) RemovalOrder() []string {
	return Reversed(m.Directories)
}

// Reversed returns a reversed copy of paths.
func Reversed(paths []string) []string {
	out := slices.Clone(paths)
	slices.Reverse(out)

	return out
}

// NativePath converts a manifest entry back to a path under root on this host.
func NativePath(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/")))
}

func toWindows(rel string) string {
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", `\`)
}
