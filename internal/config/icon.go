package config

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/nsis-build/internal/logger"
)

// magicICO is the header of a Windows icon resource.
var magicICO = []byte{0x00, 0x00, 0x01, 0x00}

// isICO reports whether the file at path starts with the ICO header.
func isICO(path string) (bool, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return false, err
	}

	defer func() {
		_ = file.Close()
	}()

	header := make([]byte, len(magicICO))
	if _, err = io.ReadFull(file, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}

		return false, err
	}

	return bytes.Equal(header, magicICO), nil
}

// warnIfNotICO logs a warning when an icon will likely be rejected by makensis.
func warnIfNotICO(ctx context.Context, field, path string) {
	ok, err := isICO(path)
	if err != nil {
		logger.WarnKV(ctx, "Unable to inspect icon", "field", field, "path", path, "error", err)
		return
	}

	if !ok {
		logger.WarnKV(ctx, "Icon does not look like an ICO file", "field", field, "path", path)
	}
}
