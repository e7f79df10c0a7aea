package validation_test

import (
	"strings"
	"testing"
	"time"

	"claimline/internal/config"
	"claimline/internal/domain"
	"claimline/internal/validation"
)

func documentedItem(id, name string, price float64) domain.Item {
	return domain.Item{
		ID:            id,
		Name:          name,
		Category:      "Furniture",
		PurchasePrice: fptr(price),
		PurchaseDate:  sptr("2024-01-15T00:00:00Z"),
		PhotoData:     []byte("not-an-image"),
		Receipts:      []domain.Receipt{verifiedReceipt(id, price)},
	}
}

func TestValidateClaimEmptyItems(t *testing.T) {
	e := newEngine()
	results, err := e.ValidateClaim(nil, domain.ClaimFire, "")
	if err != nil {
		t.Fatalf("ValidateClaim: %v", err)
	}
	if len(results.CriticalIssues) != 1 || results.CriticalIssues[0].Issues[0] != "No items selected for claim" {
		t.Fatalf("CriticalIssues = %+v", results.CriticalIssues)
	}
	if results.IsReadyForSubmission() {
		t.Error("empty claim reported ready for submission")
	}
	if got := results.CompletenessGrade(); got != "Incomplete" {
		t.Errorf("grade = %q, want Incomplete", got)
	}
}

func TestValidateClaimCompleteSet(t *testing.T) {
	e := newEngine()
	items := []domain.Item{
		documentedItem("a", "Sofa", 800),
		documentedItem("b", "Table", 300),
	}

	results, err := e.ValidateClaim(items, domain.ClaimWater, "")
	if err != nil {
		t.Fatalf("ValidateClaim: %v", err)
	}
	if results.OverallCompleteness != 1.0 {
		t.Errorf("OverallCompleteness = %v, want 1.0", results.OverallCompleteness)
	}
	if results.PhotoCompleteness != 1.0 || results.ReceiptCompleteness != 1.0 {
		t.Errorf("PhotoCompleteness = %v, ReceiptCompleteness = %v", results.PhotoCompleteness, results.ReceiptCompleteness)
	}
	// Undecodable photo bytes carry no quality penalty.
	if results.PhotoQualityScore != 1.0 {
		t.Errorf("PhotoQualityScore = %v, want 1.0", results.PhotoQualityScore)
	}
	if results.ReceiptVerificationScore != 1.0 {
		t.Errorf("ReceiptVerificationScore = %v, want 1.0", results.ReceiptVerificationScore)
	}
	if results.TotalClaimValue != 1100 {
		t.Errorf("TotalClaimValue = %v, want 1100", results.TotalClaimValue)
	}
	if results.AverageItemValue != 550 {
		t.Errorf("AverageItemValue = %v, want 550", results.AverageItemValue)
	}
	if len(results.CriticalIssues) != 0 || len(results.Warnings) != 0 {
		t.Errorf("unexpected issues: critical=%+v warnings=%+v", results.CriticalIssues, results.Warnings)
	}
	if !results.IsReadyForSubmission() {
		t.Error("complete claim not ready for submission")
	}
	if got := results.CompletenessGrade(); got != "Excellent" {
		t.Errorf("grade = %q, want Excellent", got)
	}
}

func TestValidateClaimMissingEvidenceWarnings(t *testing.T) {
	e := newEngine()
	items := []domain.Item{
		documentedItem("a", "Sofa", 800),
		{ID: "b", Name: "Lamp", PurchasePrice: fptr(40)},
	}

	results, err := e.ValidateClaim(items, domain.ClaimWater, "")
	if err != nil {
		t.Fatalf("ValidateClaim: %v", err)
	}
	if results.PhotoCompleteness != 0.5 || results.ReceiptCompleteness != 0.5 {
		t.Errorf("PhotoCompleteness = %v, ReceiptCompleteness = %v", results.PhotoCompleteness, results.ReceiptCompleteness)
	}

	var photoWarn, receiptWarn bool
	for _, w := range results.Warnings {
		if w.ItemID != "b" {
			t.Errorf("warning on unexpected item %q: %+v", w.ItemID, w)
			continue
		}
		switch w.Issues[0] {
		case "Missing photos":
			photoWarn = true
		case "Missing receipts":
			receiptWarn = true
		}
	}
	if !photoWarn || !receiptWarn {
		t.Errorf("warnings = %+v, want missing-photo and missing-receipt entries", results.Warnings)
	}
}

func TestCompletenessGrades(t *testing.T) {
	cases := []struct {
		completeness float64
		want         string
	}{
		{0.95, "Excellent"},
		{0.9, "Excellent"},
		{0.85, "Good"},
		{0.8, "Good"},
		{0.75, "Fair"},
		{0.7, "Fair"},
		{0.65, "Poor"},
		{0.6, "Poor"},
		{0.59, "Incomplete"},
		{0, "Incomplete"},
	}
	for _, tc := range cases {
		r := validation.Results{OverallCompleteness: tc.completeness}
		if got := r.CompletenessGrade(); got != tc.want {
			t.Errorf("grade(%v) = %q, want %q", tc.completeness, got, tc.want)
		}
	}
}

func TestIsReadyForSubmission(t *testing.T) {
	critical := domain.ValidationIssue{Issues: []string{"x"}, Severity: domain.SeverityCritical}

	r := validation.Results{OverallCompleteness: 1.0, ReadinessThreshold: 0.8}
	if !r.IsReadyForSubmission() {
		t.Error("complete results not ready")
	}

	r.CriticalIssues = []domain.ValidationIssue{critical}
	if r.IsReadyForSubmission() {
		t.Error("critical issue did not block readiness")
	}

	r = validation.Results{OverallCompleteness: 0.79, ReadinessThreshold: 0.8}
	if r.IsReadyForSubmission() {
		t.Error("below-threshold completeness reported ready")
	}
	r.OverallCompleteness = 0.8
	if !r.IsReadyForSubmission() {
		t.Error("at-threshold completeness not ready")
	}
}

func TestReceiptVerificationVariance(t *testing.T) {
	e := newEngine()

	within := documentedItem("a", "Chair", 100)
	within.Receipts = []domain.Receipt{verifiedReceipt("a", 109.99)}

	outside := documentedItem("b", "Shelf", 100)
	outside.Receipts = []domain.Receipt{verifiedReceipt("b", 115)}

	results, err := e.ValidateClaim([]domain.Item{within, outside}, domain.ClaimWater, "")
	if err != nil {
		t.Fatalf("ValidateClaim: %v", err)
	}
	if results.ReceiptVerificationScore != 0.5 {
		t.Errorf("ReceiptVerificationScore = %v, want 0.5", results.ReceiptVerificationScore)
	}

	var flagged []string
	for _, w := range results.Warnings {
		if w.Issues[0] == "Receipt does not verify the declared purchase price" {
			flagged = append(flagged, w.ItemID)
		}
	}
	if len(flagged) != 1 || flagged[0] != "b" {
		t.Errorf("mismatch warnings on %v, want [b]", flagged)
	}
}

func TestReceiptWithoutMerchantDoesNotVerify(t *testing.T) {
	e := newEngine()
	item := documentedItem("a", "Chair", 100)
	item.Receipts = []domain.Receipt{{ID: "r", ItemID: "a", TotalAmount: 100, PurchaseDate: sptr("2024-01-15T00:00:00Z")}}

	results, err := e.ValidateClaim([]domain.Item{item}, domain.ClaimWater, "")
	if err != nil {
		t.Fatalf("ValidateClaim: %v", err)
	}
	if results.ReceiptVerificationScore != 0 {
		t.Errorf("ReceiptVerificationScore = %v, want 0", results.ReceiptVerificationScore)
	}
}

func TestValueChecks(t *testing.T) {
	e := newEngine()

	t.Run("high value item", func(t *testing.T) {
		item := documentedItem("a", "Piano", 6000)
		results, err := e.ValidateClaim([]domain.Item{item}, domain.ClaimWater, "")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if !hasIssue(results.Suggestions, "High value item (>$5000) may require additional documentation") {
			t.Errorf("suggestions = %+v", results.Suggestions)
		}
	})

	t.Run("depreciation anomaly", func(t *testing.T) {
		old := documentedItem("a", "TV", 900)
		old.Category = "Electronics"
		old.PurchaseDate = sptr("2022-06-01T00:00:00Z")
		old.Receipts = []domain.Receipt{verifiedReceipt("a", 900)}

		results, err := e.ValidateClaim([]domain.Item{old}, domain.ClaimWater, "")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if !hasIssue(results.Warnings, "Declared value appears inconsistent with age-based depreciation") {
			t.Errorf("warnings = %+v", results.Warnings)
		}

		recent := old
		recent.PurchaseDate = sptr("2024-08-01T00:00:00Z")
		results, err = e.ValidateClaim([]domain.Item{recent}, domain.ClaimWater, "")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if hasIssue(results.Warnings, "Declared value appears inconsistent with age-based depreciation") {
			t.Errorf("recent purchase flagged: %+v", results.Warnings)
		}
	})

	t.Run("high total claim", func(t *testing.T) {
		items := []domain.Item{
			documentedItem("a", "Car Lift", 60000),
			documentedItem("b", "Generator", 50000),
		}
		results, err := e.ValidateClaim(items, domain.ClaimWater, "")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if !hasIssue(results.Suggestions, "Total claim value exceeds $100000 and may require additional underwriting review") {
			t.Errorf("suggestions = %+v", results.Suggestions)
		}
	})
}

func TestInsurerRules(t *testing.T) {
	e := newEngine()

	t.Run("unknown insurer", func(t *testing.T) {
		_, err := e.ValidateClaim([]domain.Item{documentedItem("a", "Sofa", 100)}, domain.ClaimFire, "acme")
		if err == nil || !strings.Contains(err.Error(), `unknown insurer "acme"`) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("usaa serial numbers", func(t *testing.T) {
		item := documentedItem("a", "Camera", 1500)
		results, err := e.ValidateClaim([]domain.Item{item}, domain.ClaimFire, "usaa")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if !hasIssue(results.Warnings, "USAA requires serial numbers for items over $1,000") {
			t.Errorf("warnings = %+v", results.Warnings)
		}

		item.SerialNumber = sptr("SN-9")
		results, err = e.ValidateClaim([]domain.Item{item}, domain.ClaimFire, "usaa")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if hasIssue(results.Warnings, "USAA requires serial numbers for items over $1,000") {
			t.Errorf("serial present but flagged: %+v", results.Warnings)
		}
	})

	t.Run("statefarm theft photos", func(t *testing.T) {
		item := documentedItem("a", "Bike", 400)
		item.PhotoData = nil

		results, err := e.ValidateClaim([]domain.Item{item}, domain.ClaimTheft, "statefarm")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if !hasIssue(results.CriticalIssues, "State Farm requires photos for all theft/vandalism claims") {
			t.Errorf("critical = %+v", results.CriticalIssues)
		}
		if results.IsReadyForSubmission() {
			t.Error("critical insurer issue but claim reported ready")
		}

		results, err = e.ValidateClaim([]domain.Item{item}, domain.ClaimWater, "statefarm")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if hasIssue(results.CriticalIssues, "State Farm requires photos for all theft/vandalism claims") {
			t.Errorf("non-theft claim flagged: %+v", results.CriticalIssues)
		}
	})

	t.Run("allstate fire receipts", func(t *testing.T) {
		a := documentedItem("a", "Kitchen", 30000)
		a.Receipts = nil
		b := documentedItem("b", "Flooring", 30000)
		b.Receipts = nil

		results, err := e.ValidateClaim([]domain.Item{a, b}, domain.ClaimFire, "allstate")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if !hasIssue(results.CriticalIssues, "Allstate requires receipts for the majority of items in high-value fire claims") {
			t.Errorf("critical = %+v", results.CriticalIssues)
		}

		results, err = e.ValidateClaim([]domain.Item{a, b}, domain.ClaimWater, "allstate")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if hasIssue(results.CriticalIssues, "Allstate requires receipts for the majority of items in high-value fire claims") {
			t.Errorf("non-fire claim flagged: %+v", results.CriticalIssues)
		}
	})

	t.Run("thresholds come from config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Validation.InsurerRules.USAASerialPrice = 2500
		cfg.Validation.InsurerRules.AllstateFireClaimValue = 100_000
		raised := validation.New(cfg)
		raised.Now = func() time.Time { return fixedNow }

		item := documentedItem("a", "Camera", 1500)
		results, err := raised.ValidateClaim([]domain.Item{item}, domain.ClaimFire, "usaa")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if hasIssue(results.Warnings, "USAA requires serial numbers for items over $2,500") {
			t.Errorf("item under raised threshold flagged: %+v", results.Warnings)
		}

		pricey := documentedItem("b", "Piano", 3000)
		results, err = raised.ValidateClaim([]domain.Item{pricey}, domain.ClaimFire, "usaa")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if !hasIssue(results.Warnings, "USAA requires serial numbers for items over $2,500") {
			t.Errorf("warnings = %+v", results.Warnings)
		}

		a := documentedItem("a", "Kitchen", 30000)
		a.Receipts = nil
		b := documentedItem("b", "Flooring", 30000)
		b.Receipts = nil
		results, err = raised.ValidateClaim([]domain.Item{a, b}, domain.ClaimFire, "allstate")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if hasIssue(results.CriticalIssues, "Allstate requires receipts for the majority of items in high-value fire claims") {
			t.Errorf("fire claim under raised threshold flagged: %+v", results.CriticalIssues)
		}
	})

	t.Run("acord complete data", func(t *testing.T) {
		item := documentedItem("a", "Rug", 200)
		item.Category = ""
		results, err := e.ValidateClaim([]domain.Item{item}, domain.ClaimFire, "acord")
		if err != nil {
			t.Fatalf("ValidateClaim: %v", err)
		}
		if !hasIssue(results.CriticalIssues, "ACORD format requires complete data for all items (name, price, category)") {
			t.Errorf("critical = %+v", results.CriticalIssues)
		}
	})
}

func hasIssue(issues []domain.ValidationIssue, msg string) bool {
	for _, issue := range issues {
		for _, s := range issue.Issues {
			if s == msg {
				return true
			}
		}
	}
	return false
}
