// Package pack wraps the finished store file in a single-entry zip archive.
package pack

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/chrdb/chrdb/common"

	"github.com/klauspost/compress/zip"
)

// Package writes zipPath containing exactly one deflated entry, named after
// the base name of storePath, holding the store bytes. An existing archive is
// overwritten.
func Package(storePath, zipPath string) error {
	data, err := os.ReadFile(storePath)
	if err != nil {
		return fail(storePath, "failed to read store: %v", err)
	}
	info, err := os.Stat(storePath)
	if err != nil {
		return fail(storePath, "failed to stat store: %v", err)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return fail(zipPath, "failed to create archive: %v", err)
	}

	if err := writeArchive(out, filepath.Base(storePath), info.ModTime(), data); err != nil {
		out.Close()
		os.Remove(zipPath)
		return fail(zipPath, "%v", err)
	}
	if err := out.Close(); err != nil {
		return fail(zipPath, "failed to close archive: %v", err)
	}
	return nil
}

func writeArchive(w io.Writer, name string, modified time.Time, data []byte) error {
	zw := zip.NewWriter(w)

	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	}
	header.SetMode(0o644)

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %v", name, err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %v", name, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %v", err)
	}
	return nil
}

// Unpack extracts the single entry of zipPath into destDir and returns the
// extracted path.
func Unpack(zipPath, destDir string) (string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fail(zipPath, "failed to open archive: %v", err)
	}
	defer zr.Close()

	if len(zr.File) != 1 {
		return "", fail(zipPath, "expected 1 entry, found %d", len(zr.File))
	}
	entry := zr.File[0]

	name := filepath.Base(entry.Name)
	if name != entry.Name || name == "." || name == ".." {
		return "", fail(zipPath, "refusing entry with path %q", entry.Name)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fail(zipPath, "failed to create %s: %v", destDir, err)
	}

	src, err := entry.Open()
	if err != nil {
		return "", fail(zipPath, "failed to open %s: %v", entry.Name, err)
	}
	defer src.Close()

	dest := filepath.Join(destDir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", fail(zipPath, "failed to create %s: %v", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fail(zipPath, "failed to extract %s: %v", entry.Name, err)
	}
	if err := out.Close(); err != nil {
		return "", fail(zipPath, "failed to close %s: %v", dest, err)
	}
	return dest, nil
}

func fail(file, format string, args ...any) error {
	return &common.StageError{
		Stage: common.StagePackage,
		File:  file,
		Err:   fmt.Errorf("%w: %s", common.ErrPackagingFailure, fmt.Sprintf(format, args...)),
	}
}
