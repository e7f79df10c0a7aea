package validation

import (
	"fmt"

	"claimline/internal/domain"
)

// Results is the rich pre-submission report: completeness ratios,
// photo/receipt scores, value assessment and severity-bucketed issues.
type Results struct {
	OverallCompleteness      float64 `json:"overall_completeness"`
	PhotoCompleteness        float64 `json:"photo_completeness"`
	ReceiptCompleteness      float64 `json:"receipt_completeness"`
	PhotoQualityScore        float64 `json:"photo_quality_score"`
	ReceiptVerificationScore float64 `json:"receipt_verification_score"`

	TotalClaimValue  float64 `json:"total_claim_value"`
	AverageItemValue float64 `json:"average_item_value"`

	CriticalIssues []domain.ValidationIssue `json:"critical_issues,omitempty"`
	Warnings       []domain.ValidationIssue `json:"warnings,omitempty"`
	Suggestions    []domain.ValidationIssue `json:"suggestions,omitempty"`

	ReadinessThreshold float64 `json:"-"`
}

// IsReadyForSubmission requires zero critical issues and overall
// completeness at or above the configured threshold.
func (r Results) IsReadyForSubmission() bool {
	return len(r.CriticalIssues) == 0 && r.OverallCompleteness >= r.ReadinessThreshold
}

// CompletenessGrade buckets overall completeness for display.
func (r Results) CompletenessGrade() string {
	switch {
	case r.OverallCompleteness >= 0.9:
		return "Excellent"
	case r.OverallCompleteness >= 0.8:
		return "Good"
	case r.OverallCompleteness >= 0.7:
		return "Fair"
	case r.OverallCompleteness >= 0.6:
		return "Poor"
	default:
		return "Incomplete"
	}
}

func (r *Results) add(issue domain.ValidationIssue) {
	switch issue.Severity {
	case domain.SeverityCritical:
		r.CriticalIssues = append(r.CriticalIssues, issue)
	case domain.SeverityWarning:
		r.Warnings = append(r.Warnings, issue)
	default:
		r.Suggestions = append(r.Suggestions, issue)
	}
}

// ValidateClaim runs the full pre-submission pass: basic completeness,
// photo quality, receipt verification, value assessment and the
// selected insurer's rule set. An empty insurer applies generic checks
// only.
func (e *Engine) ValidateClaim(items []domain.Item, claimType domain.ClaimType, insurer string) (Results, error) {
	results := Results{
		PhotoQualityScore:        1.0,
		ReceiptVerificationScore: 1.0,
		ReadinessThreshold:       e.Config.ReadinessThreshold,
	}

	if len(items) == 0 {
		results.add(domain.ValidationIssue{
			Issues:   []string{"No items selected for claim"},
			Severity: domain.SeverityCritical,
		})
		return results, nil
	}

	e.checkBasicCompleteness(items, &results)
	e.checkPhotoQuality(items, &results)
	e.checkReceipts(items, &results)
	e.checkValues(items, &results)

	if insurer != "" {
		rules, ok := e.Insurers[insurer]
		if !ok {
			return results, fmt.Errorf("unknown insurer %q", insurer)
		}
		for _, issue := range rules(items, claimType) {
			results.add(issue)
		}
	}

	return results, nil
}

func (e *Engine) checkBasicCompleteness(items []domain.Item, results *Results) {
	withPhotos, withReceipts := 0, 0
	for _, item := range items {
		if item.HasPhoto() {
			withPhotos++
		}
		if item.HasReceiptDocumentation() {
			withReceipts++
		}
	}
	results.PhotoCompleteness = float64(withPhotos) / float64(len(items))
	results.ReceiptCompleteness = float64(withReceipts) / float64(len(items))
	results.OverallCompleteness = Completeness(items)

	if n := len(items) - withPhotos; n > 0 {
		for _, item := range items {
			if !item.HasPhoto() {
				results.add(domain.ValidationIssue{
					ItemID:   item.ID,
					ItemName: item.Name,
					Issues:   []string{"Missing photos"},
					Severity: domain.SeverityWarning,
				})
			}
		}
	}
	if n := len(items) - withReceipts; n > 0 {
		for _, item := range items {
			if !item.HasReceiptDocumentation() {
				results.add(domain.ValidationIssue{
					ItemID:   item.ID,
					ItemName: item.Name,
					Issues:   []string{"Missing receipts"},
					Severity: domain.SeverityWarning,
				})
			}
		}
	}
}
