package domain

import "time"

// ClaimScope is the kind of loss a claim covers.
type ClaimScope string

const (
	ScopeSingleItem    ClaimScope = "single_item"
	ScopeMultipleItems ClaimScope = "multiple_items"
	ScopeRoomBased     ClaimScope = "room_based"
	ScopeTheft         ClaimScope = "theft"
	ScopeTotalLoss     ClaimScope = "total_loss"
)

// Description returns the human label used in generated documents.
func (s ClaimScope) Description() string {
	switch s {
	case ScopeSingleItem:
		return "Single Item"
	case ScopeMultipleItems:
		return "Multiple Items"
	case ScopeRoomBased:
		return "Room/Area Based"
	case ScopeTheft:
		return "Theft"
	case ScopeTotalLoss:
		return "Total Loss"
	}
	return string(s)
}

// ClaimType categorizes the cause of loss for insurer-specific rules.
type ClaimType string

const (
	ClaimFire      ClaimType = "fire"
	ClaimTheft     ClaimType = "theft"
	ClaimVandalism ClaimType = "vandalism"
	ClaimWater     ClaimType = "water"
	ClaimOther     ClaimType = "other"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Item is one inventory record. Blob fields hold the raw attachment
// bytes loaded from the store; dates are RFC3339 strings as stored.
type Item struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category,omitempty"`
	Room          string  `json:"room,omitempty"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	PurchaseDate  *string `json:"purchase_date,omitempty" format:"date-time"`
	SerialNumber  *string `json:"serial_number,omitempty"`

	PhotoData        []byte `json:"-"`
	ReceiptImageData []byte `json:"-"`
	ManualData       []byte `json:"-"`

	Receipts        []Receipt        `json:"receipts,omitempty"`
	Warranty        *Warranty        `json:"warranty,omitempty"`
	ConditionPhotos []ConditionPhoto `json:"condition_photos,omitempty"`
	Attachments     []Attachment     `json:"attachments,omitempty"`

	CreatedAt string `json:"created_at" format:"date-time"`
	UpdatedAt string `json:"updated_at" format:"date-time"`
}

// HasPhoto reports whether the item carries a primary photo.
func (i Item) HasPhoto() bool { return len(i.PhotoData) > 0 }

// HasSerialNumber reports whether a non-empty serial number is recorded.
func (i Item) HasSerialNumber() bool {
	return i.SerialNumber != nil && *i.SerialNumber != ""
}

// HasReceiptDocumentation reports whether any receipt evidence exists,
// either a receipt record or an inline receipt image.
func (i Item) HasReceiptDocumentation() bool {
	return len(i.Receipts) > 0 || len(i.ReceiptImageData) > 0
}

type Receipt struct {
	ID           string  `json:"id"`
	ItemID       string  `json:"item_id"`
	MerchantName string  `json:"merchant_name"`
	TotalAmount  float64 `json:"total_amount"`
	PurchaseDate *string `json:"purchase_date,omitempty" format:"date-time"`
	ImageData    []byte  `json:"-"`
	CreatedAt    string  `json:"created_at" format:"date-time"`
}

type Warranty struct {
	ID           string  `json:"id"`
	ItemID       string  `json:"item_id"`
	Provider     string  `json:"provider"`
	ExpiresAt    *string `json:"expires_at,omitempty" format:"date-time"`
	DocumentData []byte  `json:"-"`
}

type ConditionPhoto struct {
	ID          string `json:"id"`
	ItemID      string `json:"item_id"`
	Description string `json:"description,omitempty"`
	Data        []byte `json:"-"`
}

type Attachment struct {
	ID     string `json:"id"`
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	Data   []byte `json:"-"`
}

// ClaimScenario describes the loss event driving a package run.
// Immutable once created.
type ClaimScenario struct {
	Type                           ClaimScope        `json:"type"`
	IncidentDate                   time.Time         `json:"incident_date"`
	Description                    string            `json:"description"`
	Metadata                       map[string]string `json:"metadata,omitempty"`
	RequiresConditionDocumentation bool              `json:"requires_condition_documentation"`
}

// MetadataKeyPoliceReport is the scenario metadata key theft claims
// must carry.
const MetadataKeyPoliceReport = "police_report"

// PackageOptions is the per-run configuration bag. Never mutated
// after assembly starts.
type PackageOptions struct {
	PolicyHolder    string `json:"policy_holder,omitempty"`
	PolicyNumber    string `json:"policy_number,omitempty"`
	PropertyAddress string `json:"property_address,omitempty"`
	ContactEmail    string `json:"contact_email,omitempty"`
	ContactPhone    string `json:"contact_phone,omitempty"`

	IncludePhotos       bool `json:"include_photos"`
	IncludeReceipts     bool `json:"include_receipts"`
	IncludeWarranties   bool `json:"include_warranties"`
	CompressPhotos      bool `json:"compress_photos"`
	GenerateAttestation bool `json:"generate_attestation"`
}

// DefaultPackageOptions mirrors the toggles a fresh run gets.
func DefaultPackageOptions() PackageOptions {
	return PackageOptions{
		IncludePhotos:       true,
		IncludeReceipts:     true,
		IncludeWarranties:   true,
		GenerateAttestation: true,
	}
}

// ValidationIssue records the problems found on one item.
type ValidationIssue struct {
	ItemID   string   `json:"item_id"`
	ItemName string   `json:"item_name"`
	Issues   []string `json:"issues"`
	Severity Severity `json:"severity"`
}

// PackageValidation is the aggregate result of a completeness pass.
type PackageValidation struct {
	IsValid             bool              `json:"is_valid"`
	Issues              []ValidationIssue `json:"issues,omitempty"`
	MissingRequirements []string          `json:"missing_requirements,omitempty"`
	TotalItems          int               `json:"total_items"`
	DocumentedItems     int               `json:"documented_items"`
	TotalValue          float64           `json:"total_value"`
	ValidationDate      time.Time         `json:"validation_date"`
}

// ItemDocumentation is the per-item evidence snapshot taken by the
// collector. Read-only after creation.
type ItemDocumentation struct {
	Item            Item
	Photos          [][]byte
	Receipts        [][]byte
	Warranties      [][]byte
	Manuals         [][]byte
	ConditionPhotos [][]byte
}

type FormType string

const (
	FormStandardInventory   FormType = "standard_inventory"
	FormDetailedSpreadsheet FormType = "detailed_spreadsheet"
	FormPoliceReport        FormType = "police_report"
)

// ClaimForm is one generated or referenced form. FilePath is set once
// the source file is copied into the package tree.
type ClaimForm struct {
	Type     FormType `json:"type"`
	Name     string   `json:"name"`
	FilePath string   `json:"file_path,omitempty"`
	Required bool     `json:"required"`
	Notes    string   `json:"notes,omitempty"`
}

type AttestationType string

const (
	AttestationOwnership AttestationType = "ownership"
	AttestationValue     AttestationType = "value"
	AttestationIncident  AttestationType = "incident"
)

// Attestation is a generated declaration. Immutable once generated.
type Attestation struct {
	Type              AttestationType `json:"type"`
	Title             string          `json:"title"`
	Content           string          `json:"content"`
	RequiresSignature bool            `json:"requires_signature"`
}

// ClaimSummary holds the figures embedded in the cover letter.
type ClaimSummary struct {
	ClaimType     ClaimScope `json:"claim_type"`
	IncidentDate  time.Time  `json:"incident_date"`
	TotalItems    int        `json:"total_items"`
	TotalValue    float64    `json:"total_value"`
	AffectedRooms []string   `json:"affected_rooms,omitempty"`
	Description   string     `json:"description"`
}

type ClaimCoverLetter struct {
	Summary      ClaimSummary `json:"summary"`
	Content      string       `json:"content"`
	GeneratedAt  time.Time    `json:"generated_at"`
	PolicyHolder string       `json:"policy_holder,omitempty"`
	PolicyNumber string       `json:"policy_number,omitempty"`
}

// ClaimPackage is the terminal artifact of one assembly run. Created
// exactly once per successful run, owned by the caller afterward.
type ClaimPackage struct {
	ID            string              `json:"id"`
	Scenario      ClaimScenario       `json:"scenario"`
	Items         []Item              `json:"items"`
	CoverLetter   ClaimCoverLetter    `json:"cover_letter"`
	Documentation []ItemDocumentation `json:"-"`
	Forms         []ClaimForm         `json:"forms"`
	Attestations  []Attestation       `json:"attestations"`
	Validation    PackageValidation   `json:"validation"`
	PackageDir    string              `json:"package_dir"`
	CreatedAt     time.Time           `json:"created_at"`
	Options       PackageOptions      `json:"options"`
}

// EmailPackage is the size-bounded transmission variant. Recipients
// are left for the caller to fill in.
type EmailPackage struct {
	SummaryPath      string   `json:"summary_path"`
	CompressedPhotos []string `json:"compressed_photos,omitempty"`
	AttachmentSize   int64    `json:"attachment_size"`
	Recipients       []string `json:"recipients,omitempty"`
	Subject          string   `json:"subject"`
	Body             string   `json:"body"`
}

// TotalValue sums the declared purchase prices of items.
func TotalValue(items []Item) float64 {
	var total float64
	for _, it := range items {
		if it.PurchasePrice != nil {
			total += *it.PurchasePrice
		}
	}
	return total
}

// AffectedRooms returns the distinct, order-preserving room labels.
func AffectedRooms(items []Item) []string {
	seen := map[string]bool{}
	var rooms []string
	for _, it := range items {
		if it.Room == "" || seen[it.Room] {
			continue
		}
		seen[it.Room] = true
		rooms = append(rooms, it.Room)
	}
	return rooms
}
