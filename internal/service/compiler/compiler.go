package compiler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/oshokin/nsis-build/internal/logger"
)

const (
	// DefaultExecutable is looked up on PATH; Windows resolves makensis.exe.
	DefaultExecutable = "makensis"

	// DefaultScript is the top-level installer script, relative to the root.
	DefaultScript = "NsisInstaller/installer.nsi"
)

// errorPrefixes mark a failed build when a line starts with one of them.
//
//nolint:gochecknoglobals // Read-only.
var errorPrefixes = []string{"Error ", "Error:"}

var (
	// ErrLaunch is returned when the compiler process cannot be started.
	ErrLaunch = errors.New("launch installer compiler")
	// ErrBuildFailed is matched by every *BuildError.
	ErrBuildFailed = errors.New("installer build failed")
)

// BuildError carries the first error line printed by the compiler.
type BuildError struct {
	Line string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%v: %s", ErrBuildFailed, e.Line)
}

// Is makes errors.Is(err, ErrBuildFailed) true.
func (e *BuildError) Is(target error) bool {
	return target == ErrBuildFailed
}

// Options describes one compiler invocation.
type Options struct {
	// Executable defaults to DefaultExecutable.
	Executable string
	// Script is passed as the only argument; defaults to DefaultScript.
	Script string
	// Dir is the working directory of the compiler process.
	Dir string
	// Output receives every line as it is read; defaults to os.Stdout.
	Output io.Writer
}

// Run starts the compiler, streams its combined stdout and stderr to
// opts.Output line by line and returns a *BuildError if any line looks like
// a compiler error, whatever the exit status.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "compiler")

	executable, script, output := opts.Executable, opts.Script, opts.Output
	if executable == "" {
		executable = DefaultExecutable
	}

	if script == "" {
		script = DefaultScript
	}

	if output == nil {
		output = os.Stdout
	}

	reader, writer, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("%w: create output pipe: %w", ErrLaunch, err)
	}

	defer func() {
		_ = reader.Close()
	}()

	cmd := exec.CommandContext(ctx, executable, script)
	cmd.Dir = opts.Dir
	cmd.Stdout = writer
	cmd.Stderr = writer

	logger.InfoKV(ctx, "Starting installer compiler", "command", cmd.String(), "dir", opts.Dir)

	if err = cmd.Start(); err != nil {
		_ = writer.Close()

		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	// The child keeps its own copy of the write end; ours must go so the
	// reader sees EOF when the child exits.
	_ = writer.Close()

	failure, streamErr := stream(reader, output)
	waitErr := cmd.Wait()

	if streamErr != nil {
		return fmt.Errorf("read compiler output: %w", streamErr)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("installer compiler interrupted: %w", ctxErr)
	}

	if failure != "" {
		return &BuildError{Line: failure}
	}

	var exitErr *exec.ExitError

	switch {
	case errors.As(waitErr, &exitErr):
		logger.WarnKV(ctx, "Installer compiler exited with a non-zero status but reported no errors",
			"exit_code", exitErr.ExitCode())
	case waitErr != nil:
		return fmt.Errorf("wait for installer compiler: %w", waitErr)
	}

	logger.Info(ctx, "Installer compiler finished")

	return nil
}

// stream copies r to w line by line and returns the first error line.
func stream(r io.Reader, w io.Writer) (string, error) {
	var (
		buffered = bufio.NewReader(r)
		failure  string
	)

	for {
		line, err := buffered.ReadString('\n')
		if line != "" {
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}

			if _, writeErr := io.WriteString(w, line); writeErr != nil {
				// Keep draining so the child never blocks on a full pipe.
				w = io.Discard
			}

			if failure == "" && isErrorLine(line) {
				failure = strings.TrimRight(line, "\r\n")
			}
		}

		if errors.Is(err, io.EOF) {
			return failure, nil
		}

		if err != nil {
			return failure, err
		}
	}
}

func isErrorLine(line string) bool {
	for _, prefix := range errorPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}

	return false
}
