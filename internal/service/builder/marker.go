package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/nsis-build/internal/config"
	"github.com/oshokin/nsis-build/internal/logger"
	"github.com/oshokin/nsis-build/internal/service/compiler"
)

// MarkerFilename marks a build in progress inside the root directory.
const MarkerFilename = ".nsis-build.lock"

// ErrBuildInProgress is returned when another build owns the root directory.
var ErrBuildInProgress = errors.New("another build is running in this directory")

// marker guards a root directory against concurrent builds. The marker holds
// the owner's PID; a marker left behind by a crashed run is stale once that
// process is gone or no longer runs a watched program.
type marker struct {
	// path is the marker file location.
	path string
	// watched holds normalized executable names that indicate a live build.
	watched map[string]struct{}
}

func newMarker(root string, watched ...string) *marker {
	m := &marker{
		path:    filepath.Join(root, MarkerFilename),
		watched: make(map[string]struct{}, len(watched)),
	}

	for _, name := range watched {
		if name = normalizeProcessName(name); name != "" {
			m.watched[name] = struct{}{}
		}
	}

	return m
}

// defaultWatched returns this program's own name and the compiler's.
func defaultWatched() []string {
	names := []string{compiler.DefaultExecutable}

	if executable, err := os.Executable(); err == nil {
		names = append(names, filepath.Base(executable))
	}

	return names
}

// Acquire creates the marker. The returned function removes it again and is
// safe to call on every exit path.
func (m *marker) Acquire(ctx context.Context) (func(), error) {
	contents, err := os.ReadFile(m.path)

	switch {
	case err == nil:
		running, findErr := m.ownerRunning(contents)
		if findErr != nil {
			return nil, fmt.Errorf("find build marker owner: %w", findErr)
		}

		if running {
			return nil, ErrBuildInProgress
		}

		logger.InfoKV(ctx, "Removing stale build marker", "path", m.path, "owner", string(contents))

		if err = os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale build marker: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read build marker: %w", err)
	}

	file, err := os.OpenFile(m.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.DefaultFilePermissions)
	if errors.Is(err, os.ErrExist) {
		return nil, ErrBuildInProgress
	}

	if err != nil {
		return nil, fmt.Errorf("create build marker: %w", err)
	}

	_, writeErr := file.WriteString(strconv.Itoa(os.Getpid()))
	closeErr := file.Close()

	if err = errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(m.path)

		return nil, fmt.Errorf("write build marker: %w", err)
	}

	return func() {
		if removeErr := os.Remove(m.path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			logger.WarnKV(ctx, "Unable to remove build marker", "path", m.path, "error", removeErr)
		}
	}, nil
}

// ownerRunning reports whether the process recorded in the marker is alive
// and is one of the watched programs. A marker without a readable PID, for
// example one whose owner has not written it yet, falls back to a scan for
// any watched process.
func (m *marker) ownerRunning(contents []byte) (bool, error) {
	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return m.anyRunning()
	}

	if pid == os.Getpid() {
		return false, nil
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, err
	}

	return process != nil && m.isWatched(process), nil
}

// anyRunning reports whether a watched process other than this one is alive.
func (m *marker) anyRunning() (bool, error) {
	processes, err := ps.Processes()
	if err != nil {
		return false, err
	}

	self := os.Getpid()

	for _, process := range processes {
		if process.Pid() != self && m.isWatched(process) {
			return true, nil
		}
	}

	return false, nil
}

func (m *marker) isWatched(process ps.Process) bool {
	_, found := m.watched[normalizeProcessName(process.Executable())]

	return found
}

// normalizeProcessName drops case and the Windows executable extension.
func normalizeProcessName(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".exe")
}
