package importer

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/youyoumu/hanayomi/internal/domain"
)

// Extractor unpacks dictionary archives into a scratch directory.
type Extractor struct {
	root string
}

// NewExtractor creates an Extractor that unpacks under root.
func NewExtractor(root string) *Extractor {
	return &Extractor{root: root}
}

// Extract unpacks the archive into <root>/<archive file name>/<runID> and
// returns that directory. The run directory must not exist yet, so
// concurrent imports of the same archive never share files. Extracted files
// stay on disk afterwards.
func (e *Extractor) Extract(archivePath, runID string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", domain.ErrArchive, archivePath, err)
	}
	defer r.Close()

	base := filepath.Base(archivePath)
	if !isPlainName(base) {
		return "", fmt.Errorf("%w: unusable archive name %q", domain.ErrArchive, base)
	}
	if !isPlainName(runID) {
		return "", fmt.Errorf("%w: unusable run id %q", domain.ErrIO, runID)
	}

	parent := filepath.Join(e.root, base)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("%w: create scratch dir %s: %w", domain.ErrIO, parent, err)
	}
	dir := filepath.Join(parent, runID)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create scratch dir %s: %w", domain.ErrIO, dir, err)
	}

	for _, f := range r.File {
		if err := extractFile(dir, f); err != nil {
			return "", err
		}
	}

	return dir, nil
}

// isPlainName reports whether name is a single path element that stays in
// the directory it is joined to.
func isPlainName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

func extractFile(dir string, f *zip.File) error {
	target, err := safeJoin(dir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %w", domain.ErrIO, f.Name, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrIO, filepath.Dir(f.Name), err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %w", domain.ErrArchive, f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrIO, f.Name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		// Checksum and decompression failures surface on read.
		return fmt.Errorf("%w: extract %s: %w", domain.ErrArchive, f.Name, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrIO, f.Name, err)
	}
	return nil
}

// safeJoin resolves name under dir and rejects entries that would land
// outside of it.
func safeJoin(dir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: entry %q has an absolute path", domain.ErrArchive, name)
	}
	target := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: entry %q escapes the extraction dir", domain.ErrArchive, name)
	}
	return target, nil
}
