package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/handiism/imagegrid/internal/model"
)

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// ExportPNG writes every record that carries a decoded image to dir as
// "<prefix>-<n>.png", n being the record's 1-based position in recs.
// Records without a payload are skipped. It returns the number of files
// written.
//
// Example:
//
//	n, err := ExportPNG(ctx, "/tmp/grid", "cats", manager.Snapshot())
func ExportPNG(ctx context.Context, dir, prefix string, recs []model.ImageRecord) (int, error) {
	if err := EnsureDir(dir); err != nil {
		return 0, err
	}

	prefix = SanitizeFileName(prefix)
	if prefix == "" {
		prefix = "image"
	}

	written := 0
	var buf bytes.Buffer
	for i, rec := range recs {
		if !rec.HasPayload() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}

		buf.Reset()
		if err := png.Encode(&buf, rec.Image); err != nil {
			return written, fmt.Errorf("encode record %s: %w", rec.ID, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("%s-%03d.png", prefix, i+1))
		if err := WriteFile(ctx, path, buf.Bytes()); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("cats: 2/3")  // Returns "cats_ 2_3"
//	SanitizeFileName("grid...")    // Returns "grid"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
