package export_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"claimline/internal/collect"
	"claimline/internal/domain"
	"claimline/internal/export"
	"claimline/internal/render"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type failingRenderer struct{}

func (failingRenderer) ToDisplayFormat(string) ([]byte, error) {
	return nil, errors.New("render broke")
}

func newExporter(t *testing.T) *export.Exporter {
	t.Helper()
	e := export.New(collect.New(), render.Text{})
	e.BaseDir = t.TempDir()
	e.Now = func() time.Time { return fixedNow }
	e.NewID = func() string { return "0123456789abcdef" }
	return e
}

func fptr(v float64) *float64 { return &v }

func testInputs(t *testing.T) ([]domain.Item, domain.ClaimCoverLetter, []domain.ItemDocumentation, []domain.ClaimForm, []domain.Attestation, domain.PackageValidation) {
	t.Helper()
	items := []domain.Item{
		{
			ID:               "a",
			Name:             "Espresso Machine",
			PurchasePrice:    fptr(600),
			PhotoData:        []byte("photo-bytes"),
			ReceiptImageData: []byte("receipt-bytes"),
		},
	}
	coverLetter := domain.ClaimCoverLetter{Content: "INSURANCE CLAIM DOCUMENTATION PACKAGE\ncover letter body"}
	documentation := collect.New().Collect(items, domain.DefaultPackageOptions())

	formSrc := filepath.Join(t.TempDir(), "inventory.txt")
	if err := os.WriteFile(formSrc, []byte("form contents"), 0o644); err != nil {
		t.Fatalf("write form source: %v", err)
	}
	forms := []domain.ClaimForm{
		{Type: domain.FormStandardInventory, Name: "Standard Insurance Inventory Form", FilePath: formSrc, Required: true},
		{Type: domain.FormPoliceReport, Name: "Police Report Reference", Required: true, Notes: "Please attach official police report separately"},
	}
	attestations := []domain.Attestation{
		{Type: domain.AttestationOwnership, Title: "Attestation of Ownership", Content: "I attest ownership", RequiresSignature: true},
	}
	validation := domain.PackageValidation{
		IsValid:         true,
		TotalItems:      1,
		DocumentedItems: 1,
		TotalValue:      600,
		ValidationDate:  fixedNow,
	}
	return items, coverLetter, documentation, forms, attestations, validation
}

func assemble(t *testing.T, e *export.Exporter) domain.ClaimPackage {
	t.Helper()
	items, coverLetter, documentation, forms, attestations, validation := testInputs(t)
	scenario := domain.ClaimScenario{Type: domain.ScopeSingleItem, IncidentDate: fixedNow, Description: "Dropped"}

	pkg, err := e.Assemble(scenario, items, coverLetter, documentation, forms, attestations, validation, domain.DefaultPackageOptions())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return pkg
}

func TestAssembleBundleTree(t *testing.T) {
	e := newExporter(t)
	pkg := assemble(t, e)

	wantDir := filepath.Join(e.BaseDir, "ClaimPackage_01234567_20250601T120000Z")
	if pkg.PackageDir != wantDir {
		t.Errorf("PackageDir = %s, want %s", pkg.PackageDir, wantDir)
	}
	if pkg.ID != "0123456789abcdef" {
		t.Errorf("ID = %s", pkg.ID)
	}
	if !pkg.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v", pkg.CreatedAt)
	}

	summary, err := os.ReadFile(filepath.Join(wantDir, "Documentation", "ClaimSummary"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	for _, want := range []string{"cover letter body", "PACKAGE VALIDATION SUMMARY:", "Package Valid: YES", "No documentation issues found."} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("summary missing %q", want)
		}
	}

	form, err := os.ReadFile(filepath.Join(wantDir, "Forms", "Standard_Insurance_Inventory_Form.txt"))
	if err != nil {
		t.Fatalf("read copied form: %v", err)
	}
	if string(form) != "form contents" {
		t.Errorf("form contents = %q", form)
	}
	if got := pkg.Forms[0].FilePath; got != filepath.Join(wantDir, "Forms", "Standard_Insurance_Inventory_Form.txt") {
		t.Errorf("form file reference = %s", got)
	}
	// The file-less police reference passes through untouched.
	if pkg.Forms[1].FilePath != "" {
		t.Errorf("police reference file path = %q", pkg.Forms[1].FilePath)
	}

	att, err := os.ReadFile(filepath.Join(wantDir, "Attestations", "Attestation_of_Ownership"))
	if err != nil {
		t.Fatalf("read attestation: %v", err)
	}
	if !strings.Contains(string(att), "I attest ownership") {
		t.Errorf("attestation = %q", att)
	}

	photo, err := os.ReadFile(filepath.Join(wantDir, "Photos", "Espresso_Machine", "main_photo"))
	if err != nil {
		t.Fatalf("read photo: %v", err)
	}
	if string(photo) != "photo-bytes" {
		t.Errorf("photo = %q", photo)
	}

	readme, err := os.ReadFile(filepath.Join(wantDir, "README"))
	if err != nil {
		t.Fatalf("read README: %v", err)
	}
	for _, want := range []string{"CLAIM PACKAGE CONTENTS", "Generated: June 1, 2025", "SUBMISSION CHECKLIST:", "[Policy Holder]"} {
		if !strings.Contains(string(readme), want) {
			t.Errorf("README missing %q", want)
		}
	}
}

func TestAssembleRemovesStagedForms(t *testing.T) {
	e := newExporter(t)
	items, coverLetter, documentation, forms, attestations, validation := testInputs(t)
	src := forms[0].FilePath

	_, err := e.Assemble(domain.ClaimScenario{Type: domain.ScopeSingleItem}, items, coverLetter, documentation, forms, attestations, validation, domain.DefaultPackageOptions())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if _, statErr := os.Stat(src); !os.IsNotExist(statErr) {
		t.Errorf("staged form source still present: %v", statErr)
	}
}

func TestAssembleOmitsToggledEvidence(t *testing.T) {
	e := newExporter(t)
	items, coverLetter, documentation, forms, attestations, validation := testInputs(t)
	opts := domain.DefaultPackageOptions()
	opts.IncludeReceipts = false

	pkg, err := e.Assemble(domain.ClaimScenario{Type: domain.ScopeSingleItem}, items, coverLetter, documentation, forms, attestations, validation, opts)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	itemDir := filepath.Join(pkg.PackageDir, "Photos", "Espresso_Machine")
	if _, err := os.Stat(filepath.Join(itemDir, "main_photo")); err != nil {
		t.Errorf("photo missing with receipts toggled off: %v", err)
	}
	if _, err := os.Stat(filepath.Join(itemDir, "receipt")); !os.IsNotExist(err) {
		t.Errorf("receipt written despite toggle: %v", err)
	}
}

func TestAssembleMissingFormCleansUp(t *testing.T) {
	e := newExporter(t)
	items, coverLetter, documentation, forms, attestations, validation := testInputs(t)
	forms[0].FilePath = filepath.Join(t.TempDir(), "does-not-exist.txt")

	_, err := e.Assemble(domain.ClaimScenario{Type: domain.ScopeSingleItem}, items, coverLetter, documentation, forms, attestations, validation, domain.DefaultPackageOptions())
	if !errors.Is(err, export.ErrMissingDocumentation) {
		t.Fatalf("err = %v, want ErrMissingDocumentation", err)
	}

	entries, err := os.ReadDir(e.BaseDir)
	if err != nil {
		t.Fatalf("read base dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("partial bundle left behind: %v", entries)
	}
}

func TestAssembleRendererFailureCleansUp(t *testing.T) {
	e := newExporter(t)
	e.Renderer = failingRenderer{}
	items, coverLetter, documentation, forms, attestations, validation := testInputs(t)

	_, err := e.Assemble(domain.ClaimScenario{Type: domain.ScopeSingleItem}, items, coverLetter, documentation, forms, attestations, validation, domain.DefaultPackageOptions())
	if !errors.Is(err, export.ErrPackageGenerationFailed) {
		t.Fatalf("err = %v, want ErrPackageGenerationFailed", err)
	}

	entries, err := os.ReadDir(e.BaseDir)
	if err != nil {
		t.Fatalf("read base dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("partial bundle left behind: %v", entries)
	}
}
