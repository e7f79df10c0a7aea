package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"claimline/internal/domain"
)

// ExportArchive wraps the assembled bundle tree into one compressed
// zip artifact and returns its location.
func (e *Exporter) ExportArchive(pkg domain.ClaimPackage) (string, error) {
	zipPath := filepath.Join(e.baseDir(), fmt.Sprintf("%s_%s.zip", e.NamePrefix, shortID(pkg.ID)))
	f, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
	}

	zw := zip.NewWriter(f)
	err = e.addTree(zw, pkg.PackageDir, filepath.Base(pkg.PackageDir))
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(zipPath)
		return "", fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
	}
	return zipPath, nil
}

func (e *Exporter) addTree(zw *zip.Writer, dir, prefix string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(filepath.Join(prefix, rel)))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, src)
		src.Close()
		return err
	})
}
