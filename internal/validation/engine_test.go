package validation_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"claimline/internal/config"
	"claimline/internal/domain"
	"claimline/internal/validation"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newEngine() *validation.Engine {
	e := validation.New(config.Default())
	e.Now = func() time.Time { return fixedNow }
	return e
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func verifiedReceipt(itemID string, amount float64) domain.Receipt {
	return domain.Receipt{
		ID:           "r-" + itemID,
		ItemID:       itemID,
		MerchantName: "Best Buy",
		TotalAmount:  amount,
		PurchaseDate: sptr("2024-01-15T00:00:00Z"),
	}
}

func TestValidatePackageMixedDocumentation(t *testing.T) {
	e := newEngine()

	items := []domain.Item{
		{
			ID:            "a",
			Name:          "Laptop",
			PurchasePrice: fptr(1200),
			PurchaseDate:  sptr("2024-01-15T00:00:00Z"),
		},
		{
			ID:            "b",
			Name:          "Watch",
			PurchasePrice: fptr(400),
			PurchaseDate:  sptr("2023-06-01T00:00:00Z"),
			PhotoData:     []byte("photo"),
			Receipts:      []domain.Receipt{verifiedReceipt("b", 400)},
		},
		{
			ID:        "c",
			Name:      "Desk",
			PhotoData: []byte("photo"),
		},
	}

	v := e.ValidatePackage(items, domain.ClaimScenario{Type: domain.ScopeMultipleItems})

	if !v.IsValid {
		t.Fatalf("IsValid = false, want true: warnings alone must not invalidate")
	}
	if v.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", v.TotalItems)
	}
	if v.DocumentedItems != 2 {
		t.Errorf("DocumentedItems = %d, want 2", v.DocumentedItems)
	}
	if v.TotalValue != 1600 {
		t.Errorf("TotalValue = %v, want 1600", v.TotalValue)
	}
	if !v.ValidationDate.Equal(fixedNow) {
		t.Errorf("ValidationDate = %v, want %v", v.ValidationDate, fixedNow)
	}
	if len(v.MissingRequirements) != 0 {
		t.Errorf("MissingRequirements = %v, want none", v.MissingRequirements)
	}

	want := map[string][]string{
		"a": {"No primary photo", "No receipt documentation", "Missing serial number for valuable item"},
		"c": {"No purchase price", "No purchase date", "No receipt documentation"},
	}
	if len(v.Issues) != len(want) {
		t.Fatalf("got %d issue entries, want %d: %+v", len(v.Issues), len(want), v.Issues)
	}
	for _, issue := range v.Issues {
		if issue.Severity != domain.SeverityWarning {
			t.Errorf("item %s severity = %s, want warning", issue.ItemID, issue.Severity)
		}
		if !reflect.DeepEqual(issue.Issues, want[issue.ItemID]) {
			t.Errorf("item %s issues = %v, want %v", issue.ItemID, issue.Issues, want[issue.ItemID])
		}
	}
}

func TestValidatePackageDocumentedItemsCountsPhotos(t *testing.T) {
	e := newEngine()

	// Receipts don't factor into the documented count; a photo alone does.
	items := []domain.Item{
		{ID: "a", Name: "Lamp", PurchasePrice: fptr(40), PhotoData: []byte("photo")},
		{ID: "b", Name: "Chair", PurchasePrice: fptr(90), Receipts: []domain.Receipt{verifiedReceipt("b", 90)}},
	}

	v := e.ValidatePackage(items, domain.ClaimScenario{Type: domain.ScopeMultipleItems})
	if v.DocumentedItems != 1 {
		t.Errorf("DocumentedItems = %d, want 1 (photo-only item counts)", v.DocumentedItems)
	}
}

func TestValidatePackageSerialNumberThreshold(t *testing.T) {
	e := newEngine()

	// At the threshold exactly: no serial demand. One cent over: flagged.
	base := domain.Item{
		ID:           "x",
		Name:         "Camera",
		PurchaseDate: sptr("2024-01-15T00:00:00Z"),
		PhotoData:    []byte("photo"),
		Receipts:     []domain.Receipt{verifiedReceipt("x", 500)},
	}

	at := base
	at.PurchasePrice = fptr(500)
	if v := e.ValidatePackage([]domain.Item{at}, domain.ClaimScenario{Type: domain.ScopeSingleItem}); len(v.Issues) != 0 {
		t.Errorf("price at threshold flagged: %+v", v.Issues)
	}

	over := base
	over.PurchasePrice = fptr(500.01)
	v := e.ValidatePackage([]domain.Item{over}, domain.ClaimScenario{Type: domain.ScopeSingleItem})
	if len(v.Issues) != 1 || len(v.Issues[0].Issues) != 1 {
		t.Fatalf("issues = %+v, want exactly one", v.Issues)
	}
	if got := v.Issues[0].Issues[0]; got != "Missing serial number for valuable item" {
		t.Errorf("issue = %q", got)
	}

	withSerial := over
	withSerial.SerialNumber = sptr("SN-1")
	if v := e.ValidatePackage([]domain.Item{withSerial}, domain.ClaimScenario{Type: domain.ScopeSingleItem}); len(v.Issues) != 0 {
		t.Errorf("serial recorded but still flagged: %+v", v.Issues)
	}
}

func TestValidatePackageTheftRequiresPoliceReport(t *testing.T) {
	e := newEngine()
	items := []domain.Item{{ID: "a", Name: "Bike", PhotoData: []byte("p"), PurchasePrice: fptr(200), PurchaseDate: sptr("2024-01-15T00:00:00Z"), Receipts: []domain.Receipt{verifiedReceipt("a", 200)}}}

	v := e.ValidatePackage(items, domain.ClaimScenario{Type: domain.ScopeTheft})
	if v.IsValid {
		t.Error("IsValid = true, want false without a police report")
	}
	if len(v.MissingRequirements) != 1 || v.MissingRequirements[0] != "Police report reference for theft claim" {
		t.Fatalf("MissingRequirements = %v", v.MissingRequirements)
	}

	withReport := domain.ClaimScenario{
		Type:     domain.ScopeTheft,
		Metadata: map[string]string{domain.MetadataKeyPoliceReport: "PR-2025-0042"},
	}
	v = e.ValidatePackage(items, withReport)
	if !v.IsValid || len(v.MissingRequirements) != 0 {
		t.Errorf("IsValid = %v, MissingRequirements = %v", v.IsValid, v.MissingRequirements)
	}
}

func TestValidatePackageTotalLossInventory(t *testing.T) {
	e := newEngine()
	small := make([]domain.Item, 4)
	for i := range small {
		small[i] = domain.Item{ID: string(rune('a' + i)), Name: "Item", PhotoData: []byte("p"), PurchasePrice: fptr(10), PurchaseDate: sptr("2024-01-15T00:00:00Z"), ReceiptImageData: []byte("r")}
	}

	v := e.ValidatePackage(small, domain.ClaimScenario{Type: domain.ScopeTotalLoss})
	if v.IsValid {
		t.Error("IsValid = true for a 4-item total loss")
	}
	if len(v.MissingRequirements) != 1 || v.MissingRequirements[0] != "Total loss claims typically require comprehensive inventory" {
		t.Fatalf("MissingRequirements = %v", v.MissingRequirements)
	}

	full := append(small, domain.Item{ID: "e", Name: "Item", PhotoData: []byte("p"), PurchasePrice: fptr(10), PurchaseDate: sptr("2024-01-15T00:00:00Z"), ReceiptImageData: []byte("r")})
	if v := e.ValidatePackage(full, domain.ClaimScenario{Type: domain.ScopeTotalLoss}); !v.IsValid {
		t.Errorf("IsValid = false for a 5-item total loss: %v", v.MissingRequirements)
	}
}

func TestValidatePackageConditionDocumentation(t *testing.T) {
	e := newEngine()
	item := domain.Item{ID: "a", Name: "Sofa", PhotoData: []byte("p"), PurchasePrice: fptr(300), PurchaseDate: sptr("2024-01-15T00:00:00Z"), ReceiptImageData: []byte("r")}
	scenario := domain.ClaimScenario{Type: domain.ScopeSingleItem, RequiresConditionDocumentation: true}

	v := e.ValidatePackage([]domain.Item{item}, scenario)
	if len(v.Issues) != 1 || v.Issues[0].Issues[0] != "Missing condition photos" {
		t.Fatalf("issues = %+v", v.Issues)
	}

	item.ConditionPhotos = []domain.ConditionPhoto{{ID: "cp", ItemID: "a", Data: []byte("p")}}
	if v := e.ValidatePackage([]domain.Item{item}, scenario); len(v.Issues) != 0 {
		t.Errorf("condition photos attached but still flagged: %+v", v.Issues)
	}
}

func TestValidatePackageDeterministic(t *testing.T) {
	e := newEngine()
	items := []domain.Item{
		{ID: "a", Name: "Laptop", PurchasePrice: fptr(1200)},
		{ID: "b", Name: "Desk", PhotoData: []byte("p")},
	}
	scenario := domain.ClaimScenario{Type: domain.ScopeTheft}

	first := e.ValidatePackage(items, scenario)
	second := e.ValidatePackage(items, scenario)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated validation differs:\n%+v\n%+v", first, second)
	}
}

func TestCompleteness(t *testing.T) {
	if got := validation.Completeness(nil); got != 0 {
		t.Errorf("Completeness(nil) = %v, want 0", got)
	}

	full := domain.Item{ID: "a", Name: "A", PurchasePrice: fptr(1), PhotoData: []byte("p"), ReceiptImageData: []byte("r")}
	if got := validation.Completeness([]domain.Item{full}); got != 1.0 {
		t.Errorf("fully documented item = %v, want 1.0", got)
	}

	bare := domain.Item{ID: "b", Name: "B"}
	if got := validation.Completeness([]domain.Item{bare}); got != 0.25 {
		t.Errorf("name-only item = %v, want 0.25", got)
	}

	// Mixed set: 8 tracked fields, 5 satisfied.
	if got := validation.Completeness([]domain.Item{full, bare}); got != 0.625 {
		t.Errorf("mixed set = %v, want 0.625", got)
	}
}

func TestMissingRequirementsError(t *testing.T) {
	if err := validation.MissingRequirementsError(domain.PackageValidation{}); err != nil {
		t.Fatalf("no missing requirements, got %v", err)
	}

	v := domain.PackageValidation{MissingRequirements: []string{"Police report reference for theft claim"}}
	err := validation.MissingRequirementsError(v)
	var docErr *validation.InsufficientDocumentationError
	if !errors.As(err, &docErr) {
		t.Fatalf("error type = %T", err)
	}
	if len(docErr.Missing) != 1 {
		t.Errorf("Missing = %v", docErr.Missing)
	}
}
