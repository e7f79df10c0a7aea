package server

import (
	"time"

	"claimline/internal/domain"
	"claimline/internal/engine"
	"claimline/internal/validation"
)

type ItemResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category,omitempty"`
	Room          string   `json:"room,omitempty"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	PurchaseDate  *string  `json:"purchase_date,omitempty"`
	SerialNumber  *string  `json:"serial_number,omitempty"`
	HasPhoto      bool     `json:"has_photo"`
	HasReceipt    bool     `json:"has_receipt"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func itemResponse(it domain.Item) ItemResponse {
	return ItemResponse{
		ID:            it.ID,
		Name:          it.Name,
		Category:      it.Category,
		Room:          it.Room,
		PurchasePrice: it.PurchasePrice,
		PurchaseDate:  it.PurchaseDate,
		SerialNumber:  it.SerialNumber,
		HasPhoto:      it.HasPhoto(),
		HasReceipt:    it.HasReceiptDocumentation(),
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}
}

func mapItems(items []domain.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, itemResponse(it))
	}
	return out
}

type ValidateClaimRequest struct {
	ItemIDs   []string `json:"item_ids,omitempty"`
	ClaimType string   `json:"claim_type"`
	Insurer   string   `json:"insurer,omitempty"`
}

type ValidationResultsResponse struct {
	OverallCompleteness      float64                  `json:"overall_completeness"`
	PhotoCompleteness        float64                  `json:"photo_completeness"`
	ReceiptCompleteness      float64                  `json:"receipt_completeness"`
	PhotoQualityScore        float64                  `json:"photo_quality_score"`
	ReceiptVerificationScore float64                  `json:"receipt_verification_score"`
	TotalClaimValue          float64                  `json:"total_claim_value"`
	AverageItemValue         float64                  `json:"average_item_value"`
	CriticalIssues           []domain.ValidationIssue `json:"critical_issues,omitempty"`
	Warnings                 []domain.ValidationIssue `json:"warnings,omitempty"`
	Suggestions              []domain.ValidationIssue `json:"suggestions,omitempty"`
	ReadyForSubmission       bool                     `json:"ready_for_submission"`
	CompletenessGrade        string                   `json:"completeness_grade"`
}

func validationResultsResponse(r validation.Results) ValidationResultsResponse {
	return ValidationResultsResponse{
		OverallCompleteness:      r.OverallCompleteness,
		PhotoCompleteness:        r.PhotoCompleteness,
		ReceiptCompleteness:      r.ReceiptCompleteness,
		PhotoQualityScore:        r.PhotoQualityScore,
		ReceiptVerificationScore: r.ReceiptVerificationScore,
		TotalClaimValue:          r.TotalClaimValue,
		AverageItemValue:         r.AverageItemValue,
		CriticalIssues:           r.CriticalIssues,
		Warnings:                 r.Warnings,
		Suggestions:              r.Suggestions,
		ReadyForSubmission:       r.IsReadyForSubmission(),
		CompletenessGrade:        r.CompletenessGrade(),
	}
}

type ScenarioRequest struct {
	Type                           string            `json:"type" enum:"single_item,multiple_items,room_based,theft,total_loss"`
	IncidentDate                   time.Time         `json:"incident_date"`
	Description                    string            `json:"description,omitempty"`
	Metadata                       map[string]string `json:"metadata,omitempty"`
	RequiresConditionDocumentation bool              `json:"requires_condition_documentation,omitempty"`
}

func (r ScenarioRequest) scenario() domain.ClaimScenario {
	return domain.ClaimScenario{
		Type:                           domain.ClaimScope(r.Type),
		IncidentDate:                   r.IncidentDate,
		Description:                    r.Description,
		Metadata:                       r.Metadata,
		RequiresConditionDocumentation: r.RequiresConditionDocumentation,
	}
}

type AssembleRequest struct {
	ItemIDs  []string               `json:"item_ids,omitempty"`
	Room     string                 `json:"room,omitempty"`
	Scenario ScenarioRequest        `json:"scenario"`
	Options  *domain.PackageOptions `json:"options,omitempty"`
}

type PackageResponse struct {
	ID           string                   `json:"id"`
	PackageDir   string                   `json:"package_dir"`
	CreatedAt    time.Time                `json:"created_at"`
	IsValid      bool                     `json:"is_valid"`
	TotalItems   int                      `json:"total_items"`
	TotalValue   float64                  `json:"total_value"`
	Forms        []domain.ClaimForm       `json:"forms"`
	Attestations []string                 `json:"attestations"`
	Issues       []domain.ValidationIssue `json:"issues,omitempty"`
	Missing      []string                 `json:"missing_requirements,omitempty"`
}

func packageResponse(pkg domain.ClaimPackage) PackageResponse {
	titles := make([]string, 0, len(pkg.Attestations))
	for _, att := range pkg.Attestations {
		titles = append(titles, att.Title)
	}
	return PackageResponse{
		ID:           pkg.ID,
		PackageDir:   pkg.PackageDir,
		CreatedAt:    pkg.CreatedAt,
		IsValid:      pkg.Validation.IsValid,
		TotalItems:   pkg.Validation.TotalItems,
		TotalValue:   pkg.Validation.TotalValue,
		Forms:        pkg.Forms,
		Attestations: titles,
		Issues:       pkg.Validation.Issues,
		Missing:      pkg.Validation.MissingRequirements,
	}
}

type ProgressResponse struct {
	State     string  `json:"state"`
	Fraction  float64 `json:"fraction"`
	Step      string  `json:"step"`
	LastError string  `json:"last_error,omitempty"`
}

func progressResponse(p engine.Progress, lastErr error) ProgressResponse {
	resp := ProgressResponse{
		State:    string(p.State),
		Fraction: p.Fraction,
		Step:     p.Step,
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	return resp
}
