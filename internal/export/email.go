package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"claimline/internal/collect"
	"claimline/internal/domain"
)

// PrepareForTransmission produces the size-bounded email variant:
// photos staged for transport (gzip-compressed when the option is
// set), an abbreviated summary document and a computed total
// attachment size. Recipients are left empty for
// the caller to fill in. Staging is removed on any failure.
func (e *Exporter) PrepareForTransmission(pkg domain.ClaimPackage) (domain.EmailPackage, error) {
	stage, err := os.MkdirTemp(e.baseDir(), "claimline-email-")
	if err != nil {
		return domain.EmailPackage{}, fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
	}

	email, err := e.prepareInStage(stage, pkg)
	if err != nil {
		os.RemoveAll(stage)
		return domain.EmailPackage{}, err
	}
	return email, nil
}

func (e *Exporter) prepareInStage(stage string, pkg domain.ClaimPackage) (domain.EmailPackage, error) {
	summary := abbreviatedSummary(pkg)
	data, err := e.Renderer.ToDisplayFormat(summary)
	if err != nil {
		return domain.EmailPackage{}, fmt.Errorf("%w: render email summary: %v", ErrPackageGenerationFailed, err)
	}
	summaryPath := filepath.Join(stage, "ClaimSummary")
	if err := os.WriteFile(summaryPath, data, 0o644); err != nil {
		return domain.EmailPackage{}, fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
	}

	var photoPaths []string
	if pkg.Options.IncludePhotos {
		photoPaths, err = e.stagePhotos(stage, pkg.Documentation, pkg.Options.CompressPhotos)
		if err != nil {
			return domain.EmailPackage{}, err
		}
	}

	size, err := totalSize(append([]string{summaryPath}, photoPaths...))
	if err != nil {
		return domain.EmailPackage{}, fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
	}

	return domain.EmailPackage{
		SummaryPath:      summaryPath,
		CompressedPhotos: photoPaths,
		AttachmentSize:   size,
		Subject:          emailSubject(pkg),
		Body:             emailBody(pkg),
	}, nil
}

func (e *Exporter) stagePhotos(stage string, documentation []domain.ItemDocumentation, compress bool) ([]string, error) {
	var paths []string
	for _, doc := range documentation {
		base := collect.SanitizeName(doc.Item.Name)
		for i, photo := range doc.Photos {
			path := filepath.Join(stage, fmt.Sprintf("%s_photo_%d", base, i+1))
			var err error
			if compress {
				path += ".gz"
				err = writeGzip(path, photo)
			} else {
				err = os.WriteFile(path, photo, 0o644)
			}
			if err != nil {
				return nil, fmt.Errorf("%w: stage photo for %s: %v", ErrPackageGenerationFailed, doc.Item.Name, err)
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func writeGzip(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func totalSize(paths []string) (int64, error) {
	var total int64
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

func abbreviatedSummary(pkg domain.ClaimPackage) string {
	return fmt.Sprintf(`CLAIM DOCUMENTATION SUMMARY

Claim Type: %s
Incident Date: %s
Items Claimed: %d
Total Value: $%.2f
Package Valid: %s

%s`,
		pkg.Scenario.Type.Description(),
		pkg.Scenario.IncidentDate.Format("January 2, 2006"),
		pkg.Validation.TotalItems,
		pkg.Validation.TotalValue,
		yesNo(pkg.Validation.IsValid),
		pkg.Scenario.Description)
}

func emailSubject(pkg domain.ClaimPackage) string {
	return fmt.Sprintf("Insurance Claim Documentation - %s - %d items",
		pkg.Scenario.Type.Description(), len(pkg.Items))
}

func emailBody(pkg domain.ClaimPackage) string {
	return fmt.Sprintf(`Please find attached my insurance claim documentation package.

Claim Details:
- Type: %s
- Items: %d
- Total Value: $%.2f
- Incident Date: %s

The attached package includes all required documentation and forms.

Thank you for your assistance with this claim.
`,
		pkg.Scenario.Type.Description(),
		len(pkg.Items),
		domain.TotalValue(pkg.Items),
		pkg.Scenario.IncidentDate.Format("January 2, 2006"))
}
