package domain

import (
	"fmt"

	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

// RuleParams carries the raw, type-specific parameters of a rule as loaded
// from configuration. The rule engine converts it into the validated,
// per-type parameter variant before evaluation starts.
type RuleParams struct {
	RequiredOwnershipTypes     []string `yaml:"required_ownership_types" json:"required_ownership_types,omitempty"`
	RequiredTags               []string `yaml:"required_tags"            json:"required_tags,omitempty"`
	ForbiddenTags              []string `yaml:"forbidden_tags"           json:"forbidden_tags,omitempty"`
	MinDescriptionLength       int      `yaml:"min_description_length"   json:"min_description_length,omitempty"`
	ColumnDescriptionsRequired bool     `yaml:"column_descriptions_required" json:"column_descriptions_required,omitempty"`
	RequiredColumns            []string `yaml:"required_columns"         json:"required_columns,omitempty"`
	NamingConvention           string   `yaml:"naming_convention"        json:"naming_convention,omitempty"`
	LineageMode                string   `yaml:"lineage_mode"             json:"lineage_mode,omitempty"`
	MinTests                   *int     `yaml:"min_tests"                json:"min_tests,omitempty"`
}

// RuleSpec is one configured rule instance. Severity and type are fixed for
// the run; parameters are validated against the rule type before any
// evaluation starts.
type RuleSpec struct {
	Name        string     `yaml:"name"        json:"name"`
	Type        RuleType   `yaml:"type"        json:"type"`
	Severity    Severity   `yaml:"severity"    json:"severity"`
	Description string     `yaml:"description" json:"description,omitempty"`
	Enabled     *bool      `yaml:"enabled"     json:"enabled,omitempty"`
	Params      RuleParams `yaml:"config"      json:"config,omitempty"`
}

// IsEnabled treats an unset enabled flag as true.
func (r RuleSpec) IsEnabled() bool { return r.Enabled == nil || *r.Enabled }

// CatalogConfig holds the catalog connection settings.
type CatalogConfig struct {
	Server         string `yaml:"server"          json:"server"`
	Token          string `yaml:"token"           json:"-"`
	TimeoutSeconds int    `yaml:"timeout"         json:"timeout,omitempty"`
	BatchSize      int    `yaml:"batch_size"      json:"batch_size,omitempty"`
	MaxRetries     int    `yaml:"max_retries"     json:"max_retries,omitempty"`
}

// GovernanceConfig is the full rule-set configuration for one run.
type GovernanceConfig struct {
	Rules          []RuleSpec    `yaml:"rules"           json:"rules"`
	IncludedModels []string      `yaml:"included_models" json:"included_models,omitempty"`
	ExcludedModels []string      `yaml:"excluded_models" json:"excluded_models,omitempty"`
	Platform       string        `yaml:"platform"        json:"platform,omitempty"`
	Environment    string        `yaml:"environment"     json:"environment,omitempty"`
	FailOn         FailOn        `yaml:"fail_on"         json:"fail_on,omitempty"`
	Catalog        CatalogConfig `yaml:"datahub"         json:"datahub,omitempty"`
}

// DefaultConfig returns the rule set used when no configuration file is
// given: descriptions and ownership as warnings.
func DefaultConfig() GovernanceConfig {
	return GovernanceConfig{
		Rules: []RuleSpec{
			{
				Name:        "require_description",
				Type:        RuleDocumentation,
				Severity:    SeverityWarning,
				Description: "Models should have descriptions",
				Params:      RuleParams{MinDescriptionLength: 10},
			},
			{
				Name:        "require_ownership",
				Type:        RuleOwnership,
				Severity:    SeverityWarning,
				Description: "Models should have owners",
			},
		},
		Platform: "dbt",
		FailOn:   FailOnError,
	}
}

// Validate fails fast on malformed configuration, before any fetch or
// evaluation: unknown platforms, rule types, severities and thresholds are
// surfaced with the offending field. Rule parameter schemas are validated
// separately by the rule engine's compile step.
func (c GovernanceConfig) Validate() error {
	if c.Platform != "" {
		if err := urn.ValidatePlatform(c.Platform); err != nil {
			return err
		}
	}
	if c.FailOn != "" && !c.FailOn.Valid() {
		return fmt.Errorf("invalid fail_on %q (valid: error, warning, never)", c.FailOn)
	}
	seen := make(map[string]bool, len(c.Rules))
	for i, r := range c.Rules {
		if r.Name == "" {
			return fmt.Errorf("rules[%d]: name must not be empty", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("rules[%d]: duplicate rule name %q", i, r.Name)
		}
		seen[r.Name] = true
		if !validRuleType(r.Type) {
			return fmt.Errorf("rule %q: unknown type %q", r.Name, r.Type)
		}
		if r.Severity != "" && !r.Severity.Valid() {
			return fmt.Errorf("rule %q: unknown severity %q", r.Name, r.Severity)
		}
	}
	return nil
}

func validRuleType(t RuleType) bool {
	for _, v := range ValidRuleTypes {
		if t == v {
			return true
		}
	}
	return false
}
