package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/abdidvp/dbtguard/internal/domain"
	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

// checkOwnership fails when no owner matches a required ownership type.
// A catalog record that could not be fetched yields a distinct "ownership
// unknown" violation rather than an automatic pass or a run failure.
func checkOwnership(view MergedView, rule CompiledRule) []domain.Violation {
	params := rule.Params.(OwnershipParams)

	if view.Context.Status == domain.StatusFetchError {
		return []domain.Violation{rule.violation(view.Model,
			"ownership unknown: catalog record could not be retrieved",
			map[string]any{"status": string(domain.StatusFetchError)},
		)}
	}

	catalogOwners := view.Context.Owners
	metaOwners := view.Model.MetaOwners()

	if len(catalogOwners) == 0 && len(metaOwners) == 0 {
		return []domain.Violation{rule.violation(view.Model,
			"model has no owners defined",
			map[string]any{"required_ownership_types": params.RequiredOwnershipTypes},
		)}
	}

	if len(params.RequiredOwnershipTypes) == 0 {
		return nil
	}
	for _, owner := range catalogOwners {
		for _, required := range params.RequiredOwnershipTypes {
			if owner.Type == required {
				return nil
			}
		}
	}
	current := make([]string, 0, len(catalogOwners))
	for _, o := range catalogOwners {
		current = append(current, fmt.Sprintf("%s (%s)", o.Owner, o.Type))
	}
	return []domain.Violation{rule.violation(view.Model,
		fmt.Sprintf("model owners do not include required ownership types: %s",
			strings.Join(params.RequiredOwnershipTypes, ", ")),
		map[string]any{
			"current_owners":           current,
			"required_ownership_types": params.RequiredOwnershipTypes,
		},
	)}
}

// checkDocumentation fails on a missing or too-short description, and
// optionally on undocumented columns. The catalog description counts when
// the artifact has none.
func checkDocumentation(view MergedView, rule CompiledRule) []domain.Violation {
	params := rule.Params.(DocumentationParams)

	description := view.Model.Description
	if description == "" && view.Context.Status == domain.StatusFound {
		description = view.Context.Description
	}

	var violations []domain.Violation
	switch {
	case description == "":
		violations = append(violations, rule.violation(view.Model,
			"model has no description",
			map[string]any{"required_length": params.MinDescriptionLength},
		))
	case params.MinDescriptionLength > 0 && len(description) < params.MinDescriptionLength:
		violations = append(violations, rule.violation(view.Model,
			fmt.Sprintf("model description is too short (%d < %d characters)",
				len(description), params.MinDescriptionLength),
			map[string]any{
				"current_length":  len(description),
				"required_length": params.MinDescriptionLength,
			},
		))
	}

	if params.ColumnDescriptionsRequired {
		for _, col := range view.Model.Columns {
			if col.Description == "" {
				violations = append(violations, rule.violation(view.Model,
					fmt.Sprintf("column %q has no description", col.Name),
					map[string]any{"column": col.Name},
				))
			}
		}
	}
	return violations
}

// checkTag fails on missing required tags and present forbidden tags,
// considering the union of artifact and catalog tags.
func checkTag(view MergedView, rule CompiledRule) []domain.Violation {
	params := rule.Params.(TagParams)

	tags := make(map[string]bool, len(view.Model.Tags))
	for _, t := range view.Model.Tags {
		tags[t] = true
	}
	if view.Context.Status == domain.StatusFound {
		for _, t := range view.Context.Tags {
			tags[t] = true
		}
	}
	current := make([]string, 0, len(tags))
	for t := range tags {
		current = append(current, t)
	}
	sort.Strings(current)

	var violations []domain.Violation
	for _, required := range params.RequiredTags {
		if !tags[required] {
			violations = append(violations, rule.violation(view.Model,
				fmt.Sprintf("model is missing required tag: %s", required),
				map[string]any{"required_tags": params.RequiredTags, "current_tags": current},
			))
		}
	}
	for _, forbidden := range params.ForbiddenTags {
		if tags[forbidden] {
			violations = append(violations, rule.violation(view.Model,
				fmt.Sprintf("model has forbidden tag: %s", forbidden),
				map[string]any{"forbidden_tags": params.ForbiddenTags, "current_tags": current},
			))
		}
	}
	return violations
}

// checkColumn validates required columns, naming convention and, when a
// catalog schema exists, naming drift between the two sides.
func checkColumn(view MergedView, rule CompiledRule) []domain.Violation {
	params := rule.Params.(ColumnParams)

	declared := make(map[string]bool, len(view.Model.Columns))
	names := make([]string, 0, len(view.Model.Columns))
	for _, col := range view.Model.Columns {
		declared[col.Name] = true
		names = append(names, col.Name)
	}

	var violations []domain.Violation
	for _, required := range params.RequiredColumns {
		if !declared[required] {
			violations = append(violations, rule.violation(view.Model,
				fmt.Sprintf("model is missing required column: %s", required),
				map[string]any{"required_columns": params.RequiredColumns, "current_columns": names},
			))
		}
	}

	if params.NamingConvention != "" {
		for _, col := range view.Model.Columns {
			if !matchesConvention(col.Name, params.NamingConvention) {
				violations = append(violations, rule.violation(view.Model,
					fmt.Sprintf("column %q does not follow %s naming", col.Name, params.NamingConvention),
					map[string]any{"column": col.Name, "naming_convention": params.NamingConvention},
				))
			}
		}
	}

	// Drift against catalog schema metadata: columns declared in the
	// project but absent from the catalog. Without a fetched schema there
	// is nothing to compare.
	if view.Context.Status == domain.StatusFound && len(view.Context.SchemaFields) > 0 {
		catalog := make(map[string]bool, len(view.Context.SchemaFields))
		for _, f := range view.Context.SchemaFields {
			catalog[f] = true
		}
		for _, col := range view.Model.Columns {
			if !catalog[col.Name] {
				violations = append(violations, rule.violation(view.Model,
					fmt.Sprintf("column %q is declared in the project but absent from the catalog schema", col.Name),
					map[string]any{"column": col.Name, "catalog_columns": view.Context.SchemaFields},
				))
			}
		}
	}
	return violations
}

func matchesConvention(name, convention string) bool {
	switch convention {
	case "snake_case":
		// Each underscore-separated segment must be a single lowercase word
		// with no internal case transition.
		for _, part := range strings.Split(name, "_") {
			if len(camelcase.Split(part)) > 1 {
				return false
			}
		}
		return name == strings.ToLower(name)
	case "camelCase":
		return !strings.Contains(name, "_")
	}
	return true
}

// checkLineage cross-references declared dependencies against catalog
// lineage and flags the symmetric difference. In advisory mode the severity
// is downgraded to info regardless of configuration.
func checkLineage(view MergedView, rule CompiledRule) []domain.Violation {
	params := rule.Params.(LineageParams)
	if params.Mode == LineageModeAdvisory {
		rule.Severity = domain.SeverityInfo
	}

	if view.Context.Status == domain.StatusFetchError {
		return []domain.Violation{rule.violation(view.Model,
			"lineage unknown: catalog record could not be retrieved",
			map[string]any{"status": string(domain.StatusFetchError)},
		)}
	}

	// A not-found record contributes an empty lineage set: the catalog not
	// knowing an entity's upstream edges is itself a governance finding
	// when the project declares dependencies.
	catalogUpstream := make(map[urn.URN]bool, len(view.Context.Upstream))
	for _, u := range view.Context.Upstream {
		catalogUpstream[u] = true
	}
	declared := make(map[urn.URN]bool, len(view.DeclaredUpstream))
	for _, u := range view.DeclaredUpstream {
		declared[u] = true
	}

	var missingFromCatalog, undeclared []string
	for _, u := range view.DeclaredUpstream {
		if !catalogUpstream[u] {
			missingFromCatalog = append(missingFromCatalog, string(u))
		}
	}
	for _, u := range view.Context.Upstream {
		if !declared[u] {
			undeclared = append(undeclared, string(u))
		}
	}
	if len(missingFromCatalog) == 0 && len(undeclared) == 0 {
		return nil
	}
	sort.Strings(missingFromCatalog)
	sort.Strings(undeclared)
	return []domain.Violation{rule.violation(view.Model,
		fmt.Sprintf("declared dependencies and catalog lineage disagree (%d declared-only, %d catalog-only)",
			len(missingFromCatalog), len(undeclared)),
		map[string]any{
			"declared_not_in_catalog": missingFromCatalog,
			"catalog_not_declared":    undeclared,
			"mode":                    params.Mode,
		},
	)}
}

// checkTestCoverage fails when the entity has fewer data tests in the
// artifact than required.
func checkTestCoverage(view MergedView, rule CompiledRule) []domain.Violation {
	params := rule.Params.(TestCoverageParams)
	if view.Model.TestCount >= params.MinTests {
		return nil
	}
	return []domain.Violation{rule.violation(view.Model,
		fmt.Sprintf("model has %d test(s), but requires at least %d",
			view.Model.TestCount, params.MinTests),
		map[string]any{
			"current_tests":  view.Model.TestCount,
			"required_tests": params.MinTests,
		},
	)}
}
