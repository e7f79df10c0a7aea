package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"claimline/internal/domain"
)

// Dirs is the on-disk bundle layout for one package.
type Dirs struct {
	Root          string
	Documentation string
	Forms         string
	Attestations  string
	Photos        string
}

// CreateLayout creates the package root under baseDir with the four
// standard subdirectories.
func (c *Collector) CreateLayout(baseDir, packageName string) (Dirs, error) {
	root := filepath.Join(baseDir, packageName)
	dirs := Dirs{
		Root:          root,
		Documentation: filepath.Join(root, "Documentation"),
		Forms:         filepath.Join(root, "Forms"),
		Attestations:  filepath.Join(root, "Attestations"),
		Photos:        filepath.Join(root, "Photos"),
	}
	for _, dir := range []string{dirs.Root, dirs.Documentation, dirs.Forms, dirs.Attestations, dirs.Photos} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Dirs{}, fmt.Errorf("create package directory %s: %w", dir, err)
		}
	}
	return dirs, nil
}

// WritePhotoTree writes each item's evidence under its own sanitized
// subdirectory: main_photo, condition_photo_<n> (1-indexed), receipt
// and warranty_document_<n>, only when the source data exists and the
// matching option toggle is on.
func (c *Collector) WritePhotoTree(dirs Dirs, documentation []domain.ItemDocumentation, opts domain.PackageOptions) error {
	for _, doc := range documentation {
		itemDir := filepath.Join(dirs.Photos, SanitizeName(doc.Item.Name))
		if err := os.MkdirAll(itemDir, 0o755); err != nil {
			return err
		}
		if opts.IncludePhotos {
			if doc.Item.HasPhoto() {
				if err := os.WriteFile(filepath.Join(itemDir, "main_photo"), doc.Item.PhotoData, 0o644); err != nil {
					return err
				}
			}
			for i, photo := range doc.ConditionPhotos {
				name := fmt.Sprintf("condition_photo_%d", i+1)
				if err := os.WriteFile(filepath.Join(itemDir, name), photo, 0o644); err != nil {
					return err
				}
			}
		}
		if opts.IncludeReceipts && len(doc.Item.ReceiptImageData) > 0 {
			if err := os.WriteFile(filepath.Join(itemDir, "receipt"), doc.Item.ReceiptImageData, 0o644); err != nil {
				return err
			}
		}
		if opts.IncludeWarranties {
			for i, warranty := range doc.Warranties {
				name := fmt.Sprintf("warranty_document_%d", i+1)
				if err := os.WriteFile(filepath.Join(itemDir, name), warranty, 0o644); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// SanitizeName reduces an item name to alphanumerics, '.', '-' and
// '_'; every disallowed run collapses to a single underscore.
func SanitizeName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	s := strings.Trim(b.String(), "_")
	if s == "" {
		return "item"
	}
	return s
}
