package content

import (
	"fmt"
	"strings"
	"time"

	"claimline/internal/domain"
)

// TemplateKind selects the structured export a form delegates to.
type TemplateKind string

const (
	TemplateStandardForm TemplateKind = "standard_form"
	TemplateSpreadsheet  TemplateKind = "detailed_spreadsheet"
)

// TabularExporter renders structured item data to a file and returns
// its location. The production implementation lives in the export
// package; tests substitute their own.
type TabularExporter interface {
	Render(items []domain.Item, categories, rooms []string, kind TemplateKind, opts domain.PackageOptions) (string, error)
}

// Generator synthesizes the human-readable artifacts of a claim
// package: cover letter, required forms and attestations. All bodies
// come from fixed templates with scenario and option substitutions.
type Generator struct {
	Tabular TabularExporter
	Now     func() time.Time
}

func New(tabular TabularExporter) *Generator {
	return &Generator{Tabular: tabular, Now: time.Now}
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

const dateLayout = "January 2, 2006"

// CoverLetter builds the claim summary and renders the letter.
func (g *Generator) CoverLetter(scenario domain.ClaimScenario, items []domain.Item, opts domain.PackageOptions) domain.ClaimCoverLetter {
	summary := domain.ClaimSummary{
		ClaimType:     scenario.Type,
		IncidentDate:  scenario.IncidentDate,
		TotalItems:    len(items),
		TotalValue:    domain.TotalValue(items),
		AffectedRooms: domain.AffectedRooms(items),
		Description:   scenario.Description,
	}
	return domain.ClaimCoverLetter{
		Summary:      summary,
		Content:      g.coverLetterContent(summary, opts),
		GeneratedAt:  g.now(),
		PolicyHolder: opts.PolicyHolder,
		PolicyNumber: opts.PolicyNumber,
	}
}

// RequiredForms emits the standard inventory form (required) and the
// detailed spreadsheet (optional) through the tabular exporter, plus a
// police report placeholder for theft scenarios.
func (g *Generator) RequiredForms(scenario domain.ClaimScenario, items []domain.Item, opts domain.PackageOptions) ([]domain.ClaimForm, error) {
	categories := distinctCategories(items)
	rooms := domain.AffectedRooms(items)

	standardPath, err := g.Tabular.Render(items, categories, rooms, TemplateStandardForm, opts)
	if err != nil {
		return nil, fmt.Errorf("render standard form: %w", err)
	}
	spreadsheetPath, err := g.Tabular.Render(items, categories, rooms, TemplateSpreadsheet, opts)
	if err != nil {
		return nil, fmt.Errorf("render spreadsheet: %w", err)
	}

	forms := []domain.ClaimForm{
		{
			Type:     domain.FormStandardInventory,
			Name:     "Standard Insurance Inventory Form",
			FilePath: standardPath,
			Required: true,
		},
		{
			Type:     domain.FormDetailedSpreadsheet,
			Name:     "Detailed Item Spreadsheet",
			FilePath: spreadsheetPath,
			Required: false,
		},
	}

	if scenario.Type == domain.ScopeTheft {
		forms = append(forms, domain.ClaimForm{
			Type:     domain.FormPoliceReport,
			Name:     "Police Report Reference",
			Required: true,
			Notes:    "Please attach official police report separately",
		})
	}
	return forms, nil
}

// Attestations emits the ownership and value attestations, plus
// incident-specific declarations for theft and total loss scenarios.
func (g *Generator) Attestations(scenario domain.ClaimScenario, items []domain.Item, opts domain.PackageOptions) []domain.Attestation {
	attestations := []domain.Attestation{
		{
			Type:              domain.AttestationOwnership,
			Title:             "Attestation of Ownership",
			Content:           g.ownershipAttestation(items, opts),
			RequiresSignature: true,
		},
		{
			Type:              domain.AttestationValue,
			Title:             "Attestation of Value",
			Content:           g.valueAttestation(items, opts),
			RequiresSignature: true,
		},
	}

	switch scenario.Type {
	case domain.ScopeTheft:
		attestations = append(attestations, domain.Attestation{
			Type:              domain.AttestationIncident,
			Title:             "Theft Incident Declaration",
			Content:           g.theftDeclaration(scenario, opts),
			RequiresSignature: true,
		})
	case domain.ScopeTotalLoss:
		attestations = append(attestations, domain.Attestation{
			Type:              domain.AttestationIncident,
			Title:             "Total Loss Declaration",
			Content:           g.totalLossDeclaration(scenario, items, opts),
			RequiresSignature: true,
		})
	}
	return attestations
}

func (g *Generator) coverLetterContent(summary domain.ClaimSummary, opts domain.PackageOptions) string {
	return fmt.Sprintf(`INSURANCE CLAIM DOCUMENTATION PACKAGE

Policy Holder: %s
Policy Number: %s
Claim Date: %s
Incident Date: %s

CLAIM SUMMARY:
Claim Type: %s
Total Items: %d
Total Estimated Value: $%.2f
Affected Areas: %s

INCIDENT DESCRIPTION:
%s

This package contains comprehensive documentation for the above claim, including:
- Detailed inventory of affected items
- Photographic evidence
- Purchase documentation (receipts)
- Warranty information where applicable
- Condition assessments
- Required attestations and declarations

All documentation has been compiled and organized for your review and processing.

Respectfully submitted,
%s
`,
		orPlaceholder(opts.PolicyHolder, "Not Specified"),
		orPlaceholder(opts.PolicyNumber, "Not Specified"),
		g.now().Format(dateLayout),
		summary.IncidentDate.Format(dateLayout),
		summary.ClaimType.Description(),
		summary.TotalItems,
		summary.TotalValue,
		strings.Join(summary.AffectedRooms, ", "),
		summary.Description,
		orPlaceholder(opts.PolicyHolder, "Policy Holder"),
	)
}

func (g *Generator) ownershipAttestation(items []domain.Item, opts domain.PackageOptions) string {
	holder := orPlaceholder(opts.PolicyHolder, "[Policy Holder Name]")
	return fmt.Sprintf(`ATTESTATION OF OWNERSHIP

I, %s, hereby attest under penalty of perjury that:

1. I am the lawful owner of all items listed in this claim documentation
2. All items were acquired through legitimate purchase or gift
3. No items listed are subject to liens, encumbrances, or third-party ownership claims
4. All purchase prices and dates listed are accurate to the best of my knowledge
5. All photographic evidence represents the actual condition of items prior to the incident

Total items attested: %d

This attestation is made this %s.

________________________________
%s
Policy Holder Signature
`, holder, len(items), g.now().Format(dateLayout), holder)
}

func (g *Generator) valueAttestation(items []domain.Item, opts domain.PackageOptions) string {
	holder := orPlaceholder(opts.PolicyHolder, "[Policy Holder Name]")
	withPrice, withReceipts := 0, 0
	for _, item := range items {
		if item.PurchasePrice != nil {
			withPrice++
		}
		if item.HasReceiptDocumentation() {
			withReceipts++
		}
	}
	return fmt.Sprintf(`ATTESTATION OF VALUE

I, %s, hereby attest that:

1. All purchase prices listed are based on actual purchase receipts or fair market value at time of acquisition
2. Values have not been inflated or misrepresented
3. Any estimated values are reasonable approximations based on comparable items
4. Total claimed value: $%.2f

Items with purchase documentation: %d
Items with receipt images: %d

This attestation is made this %s.

________________________________
%s
Policy Holder Signature
`, holder, domain.TotalValue(items), withPrice, withReceipts, g.now().Format(dateLayout), holder)
}

func (g *Generator) theftDeclaration(scenario domain.ClaimScenario, opts domain.PackageOptions) string {
	holder := orPlaceholder(opts.PolicyHolder, "[Policy Holder Name]")
	policeReport := scenario.Metadata[domain.MetadataKeyPoliceReport]
	if policeReport == "" {
		policeReport = "[To be provided separately]"
	}
	return fmt.Sprintf(`THEFT INCIDENT DECLARATION

I, %s, hereby declare that:

1. The items listed in this claim were stolen from my property
2. The theft occurred on or about: %s
3. I have reported this theft to local law enforcement
4. Police report information: %s
5. I have not recovered any of the stolen items
6. No items were given away, sold, or disposed of voluntarily

This declaration is made under penalty of perjury this %s.

________________________________
%s
Policy Holder Signature
`, holder, scenario.IncidentDate.Format(dateLayout), policeReport, g.now().Format(dateLayout), holder)
}

func (g *Generator) totalLossDeclaration(scenario domain.ClaimScenario, items []domain.Item, opts domain.PackageOptions) string {
	holder := orPlaceholder(opts.PolicyHolder, "[Policy Holder Name]")
	return fmt.Sprintf(`TOTAL LOSS DECLARATION

I, %s, hereby declare that:

1. My property suffered a total loss on: %s
2. The cause of loss was: %s
3. All items listed were present at the property at the time of loss
4. No items were removed prior to the incident
5. This inventory represents my best effort to document all personal property

Total items documented: %d
Property address: %s

This declaration is made under penalty of perjury this %s.

________________________________
%s
Policy Holder Signature
`, holder, scenario.IncidentDate.Format(dateLayout), scenario.Description, len(items),
		orPlaceholder(opts.PropertyAddress, "[Property Address]"), g.now().Format(dateLayout), holder)
}

func distinctCategories(items []domain.Item) []string {
	seen := map[string]bool{}
	var categories []string
	for _, item := range items {
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		categories = append(categories, item.Category)
	}
	return categories
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
