package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/goyalyashpal/msvc-portable/internal/utils/logger"
)

// Unzip writes every archive entry stored under the root marker (e.g.
// "Contents/") into outputRoot with the marker stripped, creating parent
// directories as needed. Entries outside the marker are skipped, not errors.
func Unzip(data []byte, root, outputRoot string) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("reading zip: %w", err)
	}
	log := logger.Logger()

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, root) {
			continue
		}
		rel := strings.TrimPrefix(f.Name, root)
		if rel == "" || strings.HasSuffix(rel, "/") || strings.Contains(rel, "..") {
			continue
		}
		out := filepath.Join(outputRoot, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", out, err)
		}
		if err := writeEntry(f, out); err != nil {
			return err
		}
		log.Debugf("extracted %s", out)
	}
	return nil
}

func writeEntry(f *zip.File, out string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s in archive: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
