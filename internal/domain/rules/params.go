package rules

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/abdidvp/dbtguard/internal/domain"
)

// Lineage comparison modes.
const (
	LineageModeStrict   = "strict"
	LineageModeAdvisory = "advisory"
)

// Params is the closed set of per-type rule parameters. Each variant is
// validated against its schema before evaluation starts.
type Params interface {
	isParams()
}

// OwnershipParams configure the ownership rule.
type OwnershipParams struct {
	RequiredOwnershipTypes []string `validate:"dive,oneof=DataOwner TechnicalOwner Steward Delegate"`
}

// DocumentationParams configure the documentation rule.
type DocumentationParams struct {
	MinDescriptionLength       int `validate:"gte=0"`
	ColumnDescriptionsRequired bool
}

// TagParams configure the tag rule.
type TagParams struct {
	RequiredTags  []string `validate:"dive,required"`
	ForbiddenTags []string `validate:"dive,required"`
}

// ColumnParams configure the column rule.
type ColumnParams struct {
	RequiredColumns  []string `validate:"dive,required"`
	NamingConvention string   `validate:"omitempty,oneof=snake_case camelCase"`
}

// LineageParams configure the lineage rule.
type LineageParams struct {
	Mode string `validate:"oneof=strict advisory"`
}

// TestCoverageParams configure the test-coverage rule.
type TestCoverageParams struct {
	MinTests int `validate:"gte=1"`
}

func (OwnershipParams) isParams()     {}
func (DocumentationParams) isParams() {}
func (TagParams) isParams()           {}
func (ColumnParams) isParams()        {}
func (LineageParams) isParams()       {}
func (TestCoverageParams) isParams()  {}

var validate = validator.New()

// bindParams converts the raw configured parameters into the typed variant
// for the rule type, applying defaults, and validates it against the
// variant's schema.
func bindParams(ruleType domain.RuleType, raw domain.RuleParams) (Params, error) {
	var p Params
	switch ruleType {
	case domain.RuleOwnership:
		p = OwnershipParams{RequiredOwnershipTypes: raw.RequiredOwnershipTypes}
	case domain.RuleDocumentation:
		p = DocumentationParams{
			MinDescriptionLength:       raw.MinDescriptionLength,
			ColumnDescriptionsRequired: raw.ColumnDescriptionsRequired,
		}
	case domain.RuleTag:
		p = TagParams{RequiredTags: raw.RequiredTags, ForbiddenTags: raw.ForbiddenTags}
	case domain.RuleColumn:
		p = ColumnParams{
			RequiredColumns:  raw.RequiredColumns,
			NamingConvention: raw.NamingConvention,
		}
	case domain.RuleLineage:
		mode := raw.LineageMode
		if mode == "" {
			mode = LineageModeStrict
		}
		p = LineageParams{Mode: mode}
	case domain.RuleTestCoverage:
		min := 1
		if raw.MinTests != nil {
			min = *raw.MinTests
		}
		p = TestCoverageParams{MinTests: min}
	default:
		return nil, fmt.Errorf("unknown rule type %q", ruleType)
	}

	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid parameters for rule type %q: %w", ruleType, err)
	}
	return p, nil
}
