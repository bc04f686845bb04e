package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0o644))
}

func symlink(t *testing.T, target, link string) {
	t.Helper()

	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

// requireParentsFirst checks that every directory comes after its parent.
func requireParentsFirst(t *testing.T, dirs []string) {
	t.Helper()

	seen := make(map[string]int, len(dirs))
	for i, dir := range dirs {
		seen[dir] = i
	}

	for i, dir := range dirs {
		idx := strings.LastIndex(dir, `\`)
		if idx < 0 {
			continue
		}

		parentIdx, ok := seen[dir[:idx]]
		require.True(t, ok, "parent of %s not listed", dir)
		require.Less(t, parentIdx, i, "%s listed before its parent", dir)
	}
}

// TestBuild_SkipsSymlinks walks a small tree that contains a symlinked directory.
func TestBuild_SkipsSymlinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "b.txt"))
	touch(t, filepath.Join(root, "a", "sub", "c.txt"))
	touch(t, filepath.Join(root, "d.txt"))
	symlink(t, filepath.Join(root, "a"), filepath.Join(root, "e"))

	m, err := Build(root)
	require.NoError(t, err)

	require.Equal(t, []string{"a", `a\sub`}, m.Directories)
	require.ElementsMatch(t, []string{`a\b.txt`, `a\sub\c.txt`, "d.txt"}, m.Files)
	require.NotContains(t, m.Directories, "e")
	require.NotContains(t, m.Files, "e")
}

// TestBuild_Empty returns two empty sequences for an empty root.
func TestBuild_Empty(t *testing.T) {
	t.Parallel()

	m, err := Build(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, m.Directories)
	require.Empty(t, m.Files)
	require.NotNil(t, m.Directories)
	require.NotNil(t, m.Files)
}

// TestBuild_OnlySymlinks ignores a root holding nothing but links.
func TestBuild_OnlySymlinks(t *testing.T) {
	t.Parallel()

	target := t.TempDir()
	touch(t, filepath.Join(target, "real.txt"))

	root := t.TempDir()
	symlink(t, filepath.Join(target, "real.txt"), filepath.Join(root, "file-link"))
	symlink(t, target, filepath.Join(root, "dir-link"))

	m, err := Build(root)
	require.NoError(t, err)
	require.Empty(t, m.Directories)
	require.Empty(t, m.Files)
}

// TestBuild_DirectoryOfSymlinks keeps a real directory whose content is only links.
func TestBuild_DirectoryOfSymlinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "real.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "links"), 0o755))
	symlink(t, filepath.Join(root, "real.txt"), filepath.Join(root, "links", "alias.txt"))

	m, err := Build(root)
	require.NoError(t, err)
	require.Equal(t, []string{"links"}, m.Directories)
	require.Equal(t, []string{"real.txt"}, m.Files)
}

// TestBuild_ParentsBeforeChildren walks a deeper tree with sibling branches.
func TestBuild_ParentsBeforeChildren(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, rel := range []string{
		"x/y/z/deep.bin",
		"x/y/other.bin",
		"x/w/v/u/leaf.txt",
		"p/q/r.txt",
		"top.txt",
	} {
		touch(t, filepath.Join(root, filepath.FromSlash(rel)))
	}

	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", "nested"), 0o755))

	m, err := Build(root)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{
		"x", `x\y`, `x\y\z`, `x\w`, `x\w\v`, `x\w\v\u`,
		"p", `p\q`,
		"empty", `empty\nested`,
	}, m.Directories)
	require.ElementsMatch(t, []string{
		`x\y\z\deep.bin`, `x\y\other.bin`, `x\w\v\u\leaf.txt`, `p\q\r.txt`, "top.txt",
	}, m.Files)
	requireParentsFirst(t, m.Directories)

	// Breadth-first: every depth-1 directory precedes every depth-2 one.
	lastShallow, firstDeep := -1, len(m.Directories)
	for i, dir := range m.Directories {
		switch strings.Count(dir, `\`) {
		case 0:
			lastShallow = i
		case 1:
			firstDeep = min(firstDeep, i)
		}
	}

	require.Less(t, lastShallow, firstDeep)
}

// TestBuild_MissingRoot propagates the scan error.
func TestBuild_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := Build(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestBuild_Deterministic produces the same manifest twice.
func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "b", "1.txt"))
	touch(t, filepath.Join(root, "a", "2.txt"))
	touch(t, filepath.Join(root, "c.txt"))

	first, err := Build(root)
	require.NoError(t, err)

	second, err := Build(root)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

// TestRemovalOrder reverses directories without touching the manifest.
func TestRemovalOrder(t *testing.T) {
	t.Parallel()

	m := &Manifest{Directories: []string{"a", `a\b`, `a\b\c`}}

	require.Equal(t, []string{`a\b\c`, `a\b`, "a"}, m.RemovalOrder())
	require.Equal(t, []string{"a", `a\b`, `a\b\c`}, m.Directories)
	require.Empty(t, Reversed(nil))
}

// TestNativePath maps manifest entries back onto the host filesystem.
func TestNativePath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.Equal(t, filepath.Join(root, "a", "b.txt"), NativePath(root, `a\b.txt`))
}
