package validation

import (
	"fmt"
	"time"

	"claimline/internal/config"
	"claimline/internal/domain"
)

// Engine evaluates item sets against documentation-completeness rules,
// photo quality heuristics, receipt consistency and insurer-specific
// policies. All thresholds come from workspace config.
type Engine struct {
	Config   config.ValidationConfig
	Insurers Registry
	Now      func() time.Time
}

func New(cfg *config.Config) *Engine {
	return &Engine{
		Config:   cfg.Validation,
		Insurers: DefaultRegistry(cfg.Validation),
		Now:      time.Now,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// ValidatePackage runs the structural completeness pass used by the
// assembly pipeline. Warnings never stop a run; they are surfaced on
// the returned result for the caller to act on.
func (e *Engine) ValidatePackage(items []domain.Item, scenario domain.ClaimScenario) domain.PackageValidation {
	var issues []domain.ValidationIssue
	var missing []string

	for _, item := range items {
		var itemIssues []string

		if !item.HasPhoto() {
			itemIssues = append(itemIssues, "No primary photo")
		}
		if item.PurchasePrice == nil {
			itemIssues = append(itemIssues, "No purchase price")
		}
		if item.PurchaseDate == nil {
			itemIssues = append(itemIssues, "No purchase date")
		}
		if !item.HasReceiptDocumentation() {
			itemIssues = append(itemIssues, "No receipt documentation")
		}
		if item.PurchasePrice != nil && *item.PurchasePrice > e.Config.ValuableItemPrice && !item.HasSerialNumber() {
			itemIssues = append(itemIssues, "Missing serial number for valuable item")
		}
		if scenario.RequiresConditionDocumentation && len(item.ConditionPhotos) == 0 {
			itemIssues = append(itemIssues, "Missing condition photos")
		}

		if len(itemIssues) > 0 {
			issues = append(issues, domain.ValidationIssue{
				ItemID:   item.ID,
				ItemName: item.Name,
				Issues:   itemIssues,
				Severity: domain.SeverityWarning,
			})
		}
	}

	switch scenario.Type {
	case domain.ScopeTotalLoss:
		if len(items) < e.Config.TotalLossMinItems {
			missing = append(missing, "Total loss claims typically require comprehensive inventory")
		}
	case domain.ScopeTheft:
		if _, ok := scenario.Metadata[domain.MetadataKeyPoliceReport]; !ok {
			missing = append(missing, "Police report reference for theft claim")
		}
	}

	// A critical per-item issue invalidates the package, same as an
	// unmet scenario requirement.
	isValid := len(missing) == 0
	for _, issue := range issues {
		if issue.Severity == domain.SeverityCritical {
			isValid = false
		}
	}

	// Documented means the item carries at least one photo.
	documented := 0
	for _, item := range items {
		if item.HasPhoto() {
			documented++
		}
	}

	return domain.PackageValidation{
		IsValid:             isValid,
		Issues:              issues,
		MissingRequirements: missing,
		TotalItems:          len(items),
		DocumentedItems:     documented,
		TotalValue:          domain.TotalValue(items),
		ValidationDate:      e.now(),
	}
}

// Completeness is the satisfied-field ratio across all items: four
// tracked fields per item (name, price, photo, receipt), names always
// counting as present.
func Completeness(items []domain.Item) float64 {
	if len(items) == 0 {
		return 0
	}
	total := len(items) * 4
	completed := len(items) // names
	for _, item := range items {
		if item.PurchasePrice != nil {
			completed++
		}
		if item.HasPhoto() {
			completed++
		}
		if item.HasReceiptDocumentation() {
			completed++
		}
	}
	return float64(completed) / float64(total)
}

// MissingRequirementsError converts unmet scenario requirements into
// the error callers use to gate submission flows.
func MissingRequirementsError(v domain.PackageValidation) error {
	if len(v.MissingRequirements) == 0 {
		return nil
	}
	return &InsufficientDocumentationError{Missing: v.MissingRequirements}
}

// InsufficientDocumentationError carries the specific missing
// requirement strings from a validation pass.
type InsufficientDocumentationError struct {
	Missing []string
}

func (e *InsufficientDocumentationError) Error() string {
	return fmt.Sprintf("insufficient documentation: %d missing requirements", len(e.Missing))
}

// ValidationFailedError is returned by callers that require a valid
// package before proceeding.
type ValidationFailedError struct {
	Reasons []string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("package validation failed: %d issues", len(e.Reasons))
}
