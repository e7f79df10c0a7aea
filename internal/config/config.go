package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models claimline.yml. Thresholds under validation are
// provisional defaults rather than calibrated constants; workspaces
// may tune them.
type Config struct {
	Package struct {
		NamePrefix string `yaml:"name_prefix"`
	} `yaml:"package"`

	Options struct {
		PolicyHolder    string `yaml:"policy_holder"`
		PolicyNumber    string `yaml:"policy_number"`
		PropertyAddress string `yaml:"property_address"`
		ContactEmail    string `yaml:"contact_email"`
		ContactPhone    string `yaml:"contact_phone"`
	} `yaml:"options"`

	Validation ValidationConfig `yaml:"validation"`

	// Insurer selects the rule set applied on pre-submission checks.
	// Empty means generic checks only.
	Insurer string `yaml:"insurer"`
}

type ValidationConfig struct {
	ReadinessThreshold float64            `yaml:"readiness_threshold"`
	ValuableItemPrice  float64            `yaml:"valuable_item_price"`
	HighValueItemPrice float64            `yaml:"high_value_item_price"`
	HighClaimValue     float64            `yaml:"high_claim_value"`
	ReceiptVariance    float64            `yaml:"receipt_variance"`
	TotalLossMinItems  int                `yaml:"total_loss_min_items"`
	PhotoQuality       PhotoQualityConfig `yaml:"photo_quality"`
	Depreciation       DepreciationConfig `yaml:"depreciation"`
	InsurerRules       InsurerRulesConfig `yaml:"insurer_rules"`
}

type InsurerRulesConfig struct {
	USAASerialPrice        float64 `yaml:"usaa_serial_price"`
	AllstateFireClaimValue float64 `yaml:"allstate_fire_claim_value"`
}

type PhotoQualityConfig struct {
	MinMegapixels     float64 `yaml:"min_megapixels"`
	ResolutionPenalty float64 `yaml:"resolution_penalty"`
	BlurVariance      float64 `yaml:"blur_variance"`
	BlurPenalty       float64 `yaml:"blur_penalty"`
	FlagThreshold     float64 `yaml:"flag_threshold"`
}

type DepreciationConfig struct {
	ElectronicsRate float64 `yaml:"electronics_rate"`
	Tolerance       float64 `yaml:"tolerance"`
}

const fileName = "claimline.yml"

// Path returns the config path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, fileName)
}

// Default returns the shipped defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.Package.NamePrefix = "ClaimPackage"
	cfg.Validation = ValidationConfig{
		ReadinessThreshold: 0.8,
		ValuableItemPrice:  500,
		HighValueItemPrice: 5000,
		HighClaimValue:     100_000,
		ReceiptVariance:    0.1,
		TotalLossMinItems:  5,
		PhotoQuality: PhotoQualityConfig{
			MinMegapixels:     1.0,
			ResolutionPenalty: 0.3,
			BlurVariance:      100,
			BlurPenalty:       0.4,
			FlagThreshold:     0.6,
		},
		Depreciation: DepreciationConfig{
			ElectronicsRate: 0.2,
			Tolerance:       1.5,
		},
		InsurerRules: InsurerRulesConfig{
			USAASerialPrice:        1000,
			AllstateFireClaimValue: 50_000,
		},
	}
	return cfg
}

// Load reads config from the workspace, falling back to defaults when
// no file exists.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config bytes. Unset thresholds take
// the shipped defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	v := c.Validation
	if v.ReadinessThreshold < 0 || v.ReadinessThreshold > 1 {
		return fmt.Errorf("validation.readiness_threshold must be within [0,1]")
	}
	if v.ValuableItemPrice < 0 {
		return fmt.Errorf("validation.valuable_item_price must be non-negative")
	}
	if v.ReceiptVariance < 0 || v.ReceiptVariance > 1 {
		return fmt.Errorf("validation.receipt_variance must be within [0,1]")
	}
	if v.TotalLossMinItems < 0 {
		return fmt.Errorf("validation.total_loss_min_items must be non-negative")
	}
	q := v.PhotoQuality
	if q.FlagThreshold < 0 || q.FlagThreshold > 1 {
		return fmt.Errorf("validation.photo_quality.flag_threshold must be within [0,1]")
	}
	if q.ResolutionPenalty < 0 || q.BlurPenalty < 0 {
		return fmt.Errorf("validation.photo_quality penalties must be non-negative")
	}
	if v.Depreciation.ElectronicsRate < 0 || v.Depreciation.ElectronicsRate >= 1 {
		return fmt.Errorf("validation.depreciation.electronics_rate must be within [0,1)")
	}
	if v.Depreciation.Tolerance < 1 {
		return fmt.Errorf("validation.depreciation.tolerance must be >= 1")
	}
	if v.InsurerRules.USAASerialPrice < 0 || v.InsurerRules.AllstateFireClaimValue < 0 {
		return fmt.Errorf("validation.insurer_rules thresholds must be non-negative")
	}
	switch c.Insurer {
	case "", "usaa", "statefarm", "allstate", "acord":
	default:
		return fmt.Errorf("unknown insurer %q", c.Insurer)
	}
	return nil
}

// ToYAML serializes config for `cl config show`.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
