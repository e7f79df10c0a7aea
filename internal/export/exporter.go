package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"claimline/internal/collect"
	"claimline/internal/domain"
	"claimline/internal/render"
)

// ErrPackageGenerationFailed wraps I/O and renderer failures during
// assembly or export.
var ErrPackageGenerationFailed = errors.New("failed to generate claim package")

// ErrMissingDocumentation signals that a required artifact could not
// be located while building the package tree.
var ErrMissingDocumentation = errors.New("required documentation is missing")

// Exporter assembles the final package tree and converts it into
// distributable formats.
type Exporter struct {
	Collector  *collect.Collector
	Renderer   render.Renderer
	BaseDir    string // defaults to the system temp directory
	NamePrefix string
	Now        func() time.Time
	NewID      func() string
}

func New(collector *collect.Collector, renderer render.Renderer) *Exporter {
	return &Exporter{
		Collector:  collector,
		Renderer:   renderer,
		NamePrefix: "ClaimPackage",
		Now:        time.Now,
		NewID:      func() string { return uuid.New().String() },
	}
}

func (e *Exporter) baseDir() string {
	if e.BaseDir != "" {
		return e.BaseDir
	}
	return os.TempDir()
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Exporter) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.New().String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Assemble writes the bundle tree and returns the finished package.
// The bundle root is removed on any failure; no partial package is
// ever returned.
func (e *Exporter) Assemble(
	scenario domain.ClaimScenario,
	items []domain.Item,
	coverLetter domain.ClaimCoverLetter,
	documentation []domain.ItemDocumentation,
	forms []domain.ClaimForm,
	attestations []domain.Attestation,
	validation domain.PackageValidation,
	opts domain.PackageOptions,
) (domain.ClaimPackage, error) {
	id := e.newID()
	created := e.now()
	packageName := fmt.Sprintf("%s_%s_%s", e.NamePrefix, shortID(id), created.UTC().Format("20060102T150405Z"))

	dirs, err := e.Collector.CreateLayout(e.baseDir(), packageName)
	if err != nil {
		return domain.ClaimPackage{}, fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
	}
	cleanup := func() { os.RemoveAll(dirs.Root) }

	if err := e.writeSummary(dirs, coverLetter, validation); err != nil {
		cleanup()
		return domain.ClaimPackage{}, err
	}

	packageForms, err := e.copyForms(dirs, forms)
	if err != nil {
		cleanup()
		return domain.ClaimPackage{}, err
	}

	if err := e.writeAttestations(dirs, attestations); err != nil {
		cleanup()
		return domain.ClaimPackage{}, err
	}

	if err := e.Collector.WritePhotoTree(dirs, documentation, opts); err != nil {
		cleanup()
		return domain.ClaimPackage{}, fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
	}

	readme := readmeContent(validation, opts, created)
	if err := os.WriteFile(filepath.Join(dirs.Root, "README"), []byte(readme), 0o644); err != nil {
		cleanup()
		return domain.ClaimPackage{}, fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
	}

	return domain.ClaimPackage{
		ID:            id,
		Scenario:      scenario,
		Items:         items,
		CoverLetter:   coverLetter,
		Documentation: documentation,
		Forms:         packageForms,
		Attestations:  attestations,
		Validation:    validation,
		PackageDir:    dirs.Root,
		CreatedAt:     created,
		Options:       opts,
	}, nil
}

func (e *Exporter) writeSummary(dirs collect.Dirs, coverLetter domain.ClaimCoverLetter, validation domain.PackageValidation) error {
	text := coverLetter.Content + "\n" + validationSummary(validation)
	data, err := e.Renderer.ToDisplayFormat(text)
	if err != nil {
		return fmt.Errorf("%w: render summary: %v", ErrPackageGenerationFailed, err)
	}
	if err := os.WriteFile(filepath.Join(dirs.Documentation, "ClaimSummary"), data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
	}
	return nil
}

// copyForms moves each generated form into Forms/, renamed to the
// form's display name, and points the form's file reference at the
// new location. The staged source is removed once copied; forms
// without a source file pass through untouched.
func (e *Exporter) copyForms(dirs collect.Dirs, forms []domain.ClaimForm) ([]domain.ClaimForm, error) {
	packageForms := make([]domain.ClaimForm, 0, len(forms))
	for _, form := range forms {
		if form.FilePath == "" {
			packageForms = append(packageForms, form)
			continue
		}
		dest := filepath.Join(dirs.Forms, collect.SanitizeName(form.Name)+filepath.Ext(form.FilePath))
		if err := copyFile(form.FilePath, dest); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: form %s: %v", ErrMissingDocumentation, form.Name, err)
			}
			return nil, fmt.Errorf("%w: copy form %s: %v", ErrPackageGenerationFailed, form.Name, err)
		}
		os.Remove(form.FilePath)
		form.FilePath = dest
		packageForms = append(packageForms, form)
	}
	return packageForms, nil
}

func (e *Exporter) writeAttestations(dirs collect.Dirs, attestations []domain.Attestation) error {
	for _, att := range attestations {
		data, err := e.Renderer.ToDisplayFormat(att.Content)
		if err != nil {
			return fmt.Errorf("%w: render attestation %s: %v", ErrPackageGenerationFailed, att.Title, err)
		}
		path := filepath.Join(dirs.Attestations, collect.SanitizeName(att.Title))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("%w: %v", ErrPackageGenerationFailed, err)
		}
	}
	return nil
}

func validationSummary(v domain.PackageValidation) string {
	var b strings.Builder
	b.WriteString("PACKAGE VALIDATION SUMMARY:\n")
	fmt.Fprintf(&b, "Total Items: %d\n", v.TotalItems)
	fmt.Fprintf(&b, "Items with Photos: %d\n", v.DocumentedItems)
	fmt.Fprintf(&b, "Total Value: $%.2f\n", v.TotalValue)
	fmt.Fprintf(&b, "Package Valid: %s\n", yesNo(v.IsValid))
	if len(v.MissingRequirements) > 0 {
		b.WriteString("Missing Requirements:\n")
		for _, m := range v.MissingRequirements {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}
	if len(v.Issues) == 0 {
		b.WriteString("No documentation issues found.\n")
	} else {
		b.WriteString("Documentation Issues:\n")
		for _, issue := range v.Issues {
			fmt.Fprintf(&b, "- %s: %s\n", issue.ItemName, strings.Join(issue.Issues, ", "))
		}
	}
	return b.String()
}

func readmeContent(validation domain.PackageValidation, opts domain.PackageOptions, created time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CLAIM PACKAGE CONTENTS\nGenerated: %s\n\n", created.Format("January 2, 2006"))
	b.WriteString(`PACKAGE ORGANIZATION:

/Documentation/
    - ClaimSummary: Comprehensive claim summary and cover letter

/Forms/
    - Standard Insurance Inventory Form: Official insurance company format
    - Detailed Item Spreadsheet: Complete item details in spreadsheet format

/Attestations/
    - Ownership attestation
    - Value attestation
    - Incident-specific declarations

/Photos/
    - [ItemName]/: Folder for each item containing:
        - main_photo: Primary item photo
        - condition_photo_*: Condition documentation
        - receipt: Purchase receipt (if available)
        - warranty_document_*: Warranty documents (if available)

`)
	b.WriteString(validationSummary(validation))
	b.WriteString(`
SUBMISSION CHECKLIST:
- Review the claim summary for accuracy
- Sign all attestations requiring signature
- Attach any separately held official reports
- Confirm policy number and contact details before transmission

`)
	fmt.Fprintf(&b, "For questions about this claim package, please contact:\n%s\n%s\n%s\n",
		placeholder(opts.PolicyHolder, "[Policy Holder]"),
		placeholder(opts.ContactEmail, "[Email Address]"),
		placeholder(opts.ContactPhone, "[Phone Number]"))
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}

func placeholder(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
