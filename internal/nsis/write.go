package nsis

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/nsis-build/internal/config"
	"github.com/oshokin/nsis-build/internal/logger"
)

// WriteAll writes every fragment into dir, creating it when needed, and
// returns the written paths in Names order.
func WriteAll(ctx context.Context, dir string, fragments Fragments) ([]string, error) {
	if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create fragments directory: %w", err)
	}

	paths := make([]string, 0, len(fragments))

	for _, name := range Names() {
		data, ok := fragments[name]
		if !ok {
			continue
		}

		path := filepath.Join(dir, name)

		checksum, err := writeFragment(path, data)
		if err != nil {
			return nil, err
		}

		logger.DebugKV(ctx, "Fragment written",
			"path", path,
			"bytes", len(data),
			"sha512", base64.StdEncoding.EncodeToString(checksum))

		paths = append(paths, path)
	}

	return paths, nil
}

// writeFragment swaps path for data in one rename so an interrupted run never
// leaves a half-written fragment behind. It returns the SHA-512 of data.
func writeFragment(path string, data []byte) ([]byte, error) {
	// go-update moves the current file aside before renaming the new one in,
	// so the target has to exist.
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(path, nil, config.DefaultFilePermissions); err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: config.DefaultFilePermissions,
	}

	if err := goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return nil, fmt.Errorf("replace %s: %w", path, err)
	}

	oldPath := path + ".old"
	if _, err := os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	sum := sha512.Sum512(data)

	return sum[:], nil
}
