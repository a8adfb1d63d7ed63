package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/abdidvp/dbtguard/internal/domain"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

// ExampleConfig returns a starter governance configuration. The "basic"
// variant covers documentation and ownership; "full" exercises every rule
// type and the catalog settings.
func ExampleConfig(variant string) (domain.GovernanceConfig, error) {
	switch variant {
	case "basic":
		return basicExample(), nil
	case "full":
		return fullExample(), nil
	}
	return domain.GovernanceConfig{}, fmt.Errorf("unknown example variant %q (valid: basic, full)", variant)
}

// RenderExample serializes an example config to YAML.
func RenderExample(variant string) ([]byte, error) {
	cfg, err := ExampleConfig(variant)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(cfg)
}

func basicExample() domain.GovernanceConfig {
	return domain.GovernanceConfig{
		Platform: "dbt",
		FailOn:   domain.FailOnError,
		Rules: []domain.RuleSpec{
			{
				Name:        "require_description",
				Type:        domain.RuleDocumentation,
				Severity:    domain.SeverityWarning,
				Description: "Ensure all models have descriptions",
				Params:      domain.RuleParams{MinDescriptionLength: 10},
			},
			{
				Name:        "require_ownership",
				Type:        domain.RuleOwnership,
				Severity:    domain.SeverityError,
				Description: "Ensure all models have owners",
				Params:      domain.RuleParams{RequiredOwnershipTypes: []string{domain.OwnerTypeDataOwner}},
			},
		},
	}
}

func fullExample() domain.GovernanceConfig {
	return domain.GovernanceConfig{
		Platform:    "snowflake",
		Environment: "PROD",
		FailOn:      domain.FailOnError,
		Rules: []domain.RuleSpec{
			{
				Name:        "require_description",
				Type:        domain.RuleDocumentation,
				Severity:    domain.SeverityWarning,
				Description: "Ensure all models have descriptions",
				Enabled:     boolPtr(true),
				Params: domain.RuleParams{
					MinDescriptionLength:       10,
					ColumnDescriptionsRequired: true,
				},
			},
			{
				Name:        "require_ownership",
				Type:        domain.RuleOwnership,
				Severity:    domain.SeverityError,
				Description: "Ensure all models have a data or technical owner",
				Params: domain.RuleParams{
					RequiredOwnershipTypes: []string{
						domain.OwnerTypeDataOwner, domain.OwnerTypeTechnicalOwner,
					},
				},
			},
			{
				Name:        "require_pii_tag",
				Type:        domain.RuleTag,
				Severity:    domain.SeverityWarning,
				Description: "Critical models must carry the pii tag",
				Params:      domain.RuleParams{RequiredTags: []string{"pii"}},
			},
			{
				Name:        "forbid_wip_tags",
				Type:        domain.RuleTag,
				Severity:    domain.SeverityError,
				Description: "Production models must not carry scratch tags",
				Params:      domain.RuleParams{ForbiddenTags: []string{"test", "wip"}},
			},
			{
				Name:        "audit_columns",
				Type:        domain.RuleColumn,
				Severity:    domain.SeverityError,
				Description: "Critical models must declare audit columns",
				Params: domain.RuleParams{
					RequiredColumns:  []string{"created_at", "updated_at"},
					NamingConvention: "snake_case",
				},
			},
			{
				Name:        "lineage_consistency",
				Type:        domain.RuleLineage,
				Severity:    domain.SeverityWarning,
				Description: "Declared dependencies must match catalog lineage",
				Params:      domain.RuleParams{LineageMode: "strict"},
			},
			{
				Name:        "require_tests",
				Type:        domain.RuleTestCoverage,
				Severity:    domain.SeverityWarning,
				Description: "Models should have at least one data test",
				Params:      domain.RuleParams{MinTests: intPtr(1)},
			},
		},
		ExcludedModels: []string{"stg_tmp_*", "int_tmp_*"},
		Catalog: domain.CatalogConfig{
			Server:         "https://datahub.example.com",
			Token:          "${DATAHUB_TOKEN}",
			TimeoutSeconds: 30,
			BatchSize:      25,
			MaxRetries:     3,
		},
	}
}
