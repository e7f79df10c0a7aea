package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"claimline/internal/domain"
)

// ExportCombinedDocument flattens the package into a single document:
// cover letter, validation summary, form index and attestation bodies
// in order. Returns the path of the written file.
func (e *Exporter) ExportCombinedDocument(pkg domain.ClaimPackage) (string, error) {
	var b strings.Builder

	b.WriteString(pkg.CoverLetter.Content)
	b.WriteString("\n\n")
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n\n")
	b.WriteString(validationSummary(pkg.Validation))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n\nINCLUDED FORMS:\n")
	for _, form := range pkg.Forms {
		marker := "optional"
		if form.Required {
			marker = "required"
		}
		fmt.Fprintf(&b, "- %s (%s)\n", form.Name, marker)
		if form.Notes != "" {
			fmt.Fprintf(&b, "  Note: %s\n", form.Notes)
		}
	}
	for _, att := range pkg.Attestations {
		b.WriteString("\n")
		b.WriteString(strings.Repeat("=", 60))
		b.WriteString("\n\n")
		b.WriteString(att.Content)
		b.WriteString("\n")
	}

	data, err := e.Renderer.ToDisplayFormat(b.String())
	if err != nil {
		return "", fmt.Errorf("%w: render combined document: %v", ErrPackageGenerationFailed, err)
	}

	path := filepath.Join(e.baseDir(), fmt.Sprintf("%s_%s_Combined", e.NamePrefix, shortID(pkg.ID)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
	}
	return path, nil
}
