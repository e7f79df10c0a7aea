package validation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"claimline/internal/domain"
)

func (e *Engine) checkValues(items []domain.Item, results *Results) {
	var totalValue float64

	for _, item := range items {
		if item.PurchasePrice == nil {
			continue
		}
		price := *item.PurchasePrice
		totalValue += price

		if price > e.Config.HighValueItemPrice {
			results.add(domain.ValidationIssue{
				ItemID:   item.ID,
				ItemName: item.Name,
				Issues:   []string{fmt.Sprintf("High value item (>$%.0f) may require additional documentation", e.Config.HighValueItemPrice)},
				Severity: domain.SeverityInfo,
			})
		}

		if e.isValueAnomalous(item) {
			results.add(domain.ValidationIssue{
				ItemID:   item.ID,
				ItemName: item.Name,
				Issues:   []string{"Declared value appears inconsistent with age-based depreciation"},
				Severity: domain.SeverityWarning,
			})
		}
	}

	results.TotalClaimValue = totalValue
	if len(items) > 0 {
		results.AverageItemValue = totalValue / float64(len(items))
	}

	if totalValue > e.Config.HighClaimValue {
		results.add(domain.ValidationIssue{
			Issues:   []string{fmt.Sprintf("Total claim value exceeds $%.0f and may require additional underwriting review", e.Config.HighClaimValue)},
			Severity: domain.SeverityInfo,
		})
	}
}

// isValueAnomalous applies the depreciation heuristic: electronics are
// expected to lose value at the configured yearly rate, and a declared
// price beyond the tolerance of the depreciation-adjusted expectation
// is flagged for review.
func (e *Engine) isValueAnomalous(item domain.Item) bool {
	if item.PurchasePrice == nil || item.PurchaseDate == nil {
		return false
	}
	if !strings.Contains(strings.ToLower(item.Category), "electronic") {
		return false
	}
	purchased, err := time.Parse(time.RFC3339, *item.PurchaseDate)
	if err != nil {
		return false
	}
	ageYears := e.now().Sub(purchased).Hours() / (365.24 * 24)
	if ageYears <= 0 {
		return false
	}
	price := *item.PurchasePrice
	expected := price * math.Pow(1-e.Config.Depreciation.ElectronicsRate, ageYears)
	return price > expected*e.Config.Depreciation.Tolerance
}
