package validation

import (
	"fmt"
	"strconv"
	"strings"

	"claimline/internal/config"
	"claimline/internal/domain"
)

// RuleFunc is one insurer's submission rule set: a pure function over
// the item list producing zero or more issues.
type RuleFunc func(items []domain.Item, claimType domain.ClaimType) []domain.ValidationIssue

// Registry maps an insurer identifier to its rule set. Registering a
// new insurer requires no engine changes.
type Registry map[string]RuleFunc

// DefaultRegistry ships the built-in insurer rule tables, with price
// thresholds taken from config.
func DefaultRegistry(cfg config.ValidationConfig) Registry {
	return Registry{
		"usaa":      usaaRules(cfg.InsurerRules.USAASerialPrice),
		"statefarm": stateFarmRules,
		"allstate":  allstateRules(cfg.InsurerRules.AllstateFireClaimValue),
		"acord":     acordRules,
	}
}

func usaaRules(serialPrice float64) RuleFunc {
	return func(items []domain.Item, _ domain.ClaimType) []domain.ValidationIssue {
		var issues []domain.ValidationIssue
		for _, item := range items {
			if item.PurchasePrice != nil && *item.PurchasePrice > serialPrice && !item.HasSerialNumber() {
				issues = append(issues, domain.ValidationIssue{
					ItemID:   item.ID,
					ItemName: item.Name,
					Issues:   []string{fmt.Sprintf("USAA requires serial numbers for items over $%s", formatThreshold(serialPrice))},
					Severity: domain.SeverityWarning,
				})
			}
		}
		return issues
	}
}

func stateFarmRules(items []domain.Item, claimType domain.ClaimType) []domain.ValidationIssue {
	if claimType != domain.ClaimTheft && claimType != domain.ClaimVandalism {
		return nil
	}
	var issues []domain.ValidationIssue
	for _, item := range items {
		if !item.HasPhoto() {
			issues = append(issues, domain.ValidationIssue{
				ItemID:   item.ID,
				ItemName: item.Name,
				Issues:   []string{"State Farm requires photos for all theft/vandalism claims"},
				Severity: domain.SeverityCritical,
			})
		}
	}
	return issues
}

func allstateRules(fireClaimValue float64) RuleFunc {
	return func(items []domain.Item, claimType domain.ClaimType) []domain.ValidationIssue {
		if claimType != domain.ClaimFire || domain.TotalValue(items) <= fireClaimValue {
			return nil
		}
		var withoutReceipts []domain.Item
		for _, item := range items {
			if !item.HasReceiptDocumentation() {
				withoutReceipts = append(withoutReceipts, item)
			}
		}
		if float64(len(withoutReceipts))/float64(len(items)) <= 0.5 {
			return nil
		}
		var issues []domain.ValidationIssue
		for _, item := range withoutReceipts {
			issues = append(issues, domain.ValidationIssue{
				ItemID:   item.ID,
				ItemName: item.Name,
				Issues:   []string{"Allstate requires receipts for the majority of items in high-value fire claims"},
				Severity: domain.SeverityCritical,
			})
		}
		return issues
	}
}

// formatThreshold renders a dollar threshold with thousands grouping,
// dropping the fraction when it is whole.
func formatThreshold(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func acordRules(items []domain.Item, _ domain.ClaimType) []domain.ValidationIssue {
	var issues []domain.ValidationIssue
	for _, item := range items {
		if item.Name == "" || item.PurchasePrice == nil || item.Category == "" {
			issues = append(issues, domain.ValidationIssue{
				ItemID:   item.ID,
				ItemName: item.Name,
				Issues:   []string{"ACORD format requires complete data for all items (name, price, category)"},
				Severity: domain.SeverityCritical,
			})
		}
	}
	return issues
}
