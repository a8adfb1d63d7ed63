package rules_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/dbtguard/internal/domain"
	"github.com/abdidvp/dbtguard/internal/domain/manifest"
	"github.com/abdidvp/dbtguard/internal/domain/rules"
	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

func buildGraph(t *testing.T, nodes string) *manifest.Graph {
	t.Helper()
	g, err := manifest.Build([]byte(fmt.Sprintf(`{
		"metadata": {"dbt_schema_version": "https://schemas.getdbt.com/dbt/manifest/v9.json"},
		"nodes": {%s}
	}`, nodes)))
	require.NoError(t, err)
	return g
}

func compile(t *testing.T, specs ...domain.RuleSpec) []rules.CompiledRule {
	t.Helper()
	compiled, err := rules.Compile(specs)
	require.NoError(t, err)
	return compiled
}

// evaluate runs the given rules against the graph with one shared context
// status applied to every entity.
func evaluate(t *testing.T, g *manifest.Graph, ctx *domain.GovernanceContext, specs ...domain.RuleSpec) []domain.Violation {
	t.Helper()
	mapper := urn.NewMapper("dbt", "")
	engine := rules.NewEngine(compile(t, specs...), mapper, nil, nil)

	contexts := make(map[urn.URN]*domain.GovernanceContext)
	if ctx != nil {
		for _, m := range g.Entities {
			u := mapper.DatasetURN(m)
			c := *ctx
			c.URN = u
			contexts[u] = &c
		}
	}
	return engine.Evaluate(g, contexts)
}

func TestOwnershipRule(t *testing.T) {
	g := buildGraph(t, `"model.analytics.orders": {"name": "orders", "resource_type": "model"}`)
	spec := domain.RuleSpec{
		Name: "require_ownership", Type: domain.RuleOwnership, Severity: domain.SeverityError,
		Params: domain.RuleParams{RequiredOwnershipTypes: []string{domain.OwnerTypeDataOwner}},
	}

	t.Run("unregistered model has no owners", func(t *testing.T) {
		violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusNotFound}, spec)
		require.Len(t, violations, 1)
		assert.Equal(t, "model has no owners defined", violations[0].Message)
		assert.Equal(t, domain.SeverityError, violations[0].Severity)
	})

	t.Run("fetch error yields ownership unknown", func(t *testing.T) {
		violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusFetchError}, spec)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0].Message, "ownership unknown")
	})

	t.Run("required type satisfied", func(t *testing.T) {
		ctx := &domain.GovernanceContext{
			Status: domain.StatusFound,
			Owners: []domain.Owner{{Owner: "urn:li:corpuser:alice", Type: domain.OwnerTypeDataOwner}},
		}
		assert.Empty(t, evaluate(t, g, ctx, spec))
	})

	t.Run("required type missing", func(t *testing.T) {
		ctx := &domain.GovernanceContext{
			Status: domain.StatusFound,
			Owners: []domain.Owner{{Owner: "urn:li:corpuser:bob", Type: domain.OwnerTypeSteward}},
		}
		violations := evaluate(t, g, ctx, spec)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0].Message, "required ownership types")
	})

	t.Run("meta owners satisfy presence without type requirement", func(t *testing.T) {
		withMeta := buildGraph(t, `"model.analytics.orders": {
			"name": "orders", "resource_type": "model", "meta": {"owner": "data-team"}
		}`)
		presenceOnly := domain.RuleSpec{Name: "has_owner", Type: domain.RuleOwnership, Severity: domain.SeverityWarning}
		assert.Empty(t, evaluate(t, withMeta, &domain.GovernanceContext{Status: domain.StatusNotFound}, presenceOnly))
	})
}

func TestDocumentationRule(t *testing.T) {
	spec := domain.RuleSpec{
		Name: "require_description", Type: domain.RuleDocumentation, Severity: domain.SeverityWarning,
		Params: domain.RuleParams{MinDescriptionLength: 10},
	}

	t.Run("missing description", func(t *testing.T) {
		g := buildGraph(t, `"model.analytics.orders": {"name": "orders", "resource_type": "model"}`)
		violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusNotFound}, spec)
		require.Len(t, violations, 1)
		assert.Equal(t, "model has no description", violations[0].Message)
	})

	t.Run("too short description", func(t *testing.T) {
		g := buildGraph(t, `"model.analytics.orders": {
			"name": "orders", "resource_type": "model", "description": "Orders."
		}`)
		violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusNotFound}, spec)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0].Message, "too short")
	})

	t.Run("catalog description fills in for the artifact", func(t *testing.T) {
		g := buildGraph(t, `"model.analytics.orders": {"name": "orders", "resource_type": "model"}`)
		ctx := &domain.GovernanceContext{
			Status:      domain.StatusFound,
			Description: "One row per customer order.",
		}
		assert.Empty(t, evaluate(t, g, ctx, spec))
	})

	t.Run("undocumented columns", func(t *testing.T) {
		g := buildGraph(t, `"model.analytics.orders": {
			"name": "orders", "resource_type": "model",
			"description": "One row per customer order.",
			"columns": {
				"id": {"name": "id", "description": "Primary key"},
				"status": {"name": "status"}
			}
		}`)
		colSpec := spec
		colSpec.Params.ColumnDescriptionsRequired = true
		violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusNotFound}, colSpec)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0].Message, `column "status"`)
	})
}

func TestTagRule(t *testing.T) {
	g := buildGraph(t, `"model.analytics.orders": {
		"name": "orders", "resource_type": "model", "tags": ["finance", "wip"]
	}`)

	t.Run("required tag from the catalog counts", func(t *testing.T) {
		spec := domain.RuleSpec{
			Name: "require_pii", Type: domain.RuleTag, Severity: domain.SeverityWarning,
			Params: domain.RuleParams{RequiredTags: []string{"pii"}},
		}
		ctx := &domain.GovernanceContext{Status: domain.StatusFound, Tags: []string{"pii"}}
		assert.Empty(t, evaluate(t, g, ctx, spec))
	})

	t.Run("missing required tag", func(t *testing.T) {
		spec := domain.RuleSpec{
			Name: "require_pii", Type: domain.RuleTag, Severity: domain.SeverityWarning,
			Params: domain.RuleParams{RequiredTags: []string{"pii"}},
		}
		violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusNotFound}, spec)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0].Message, "missing required tag: pii")
	})

	t.Run("forbidden tag present", func(t *testing.T) {
		spec := domain.RuleSpec{
			Name: "no_wip", Type: domain.RuleTag, Severity: domain.SeverityError,
			Params: domain.RuleParams{ForbiddenTags: []string{"wip"}},
		}
		violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusNotFound}, spec)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0].Message, "forbidden tag: wip")
	})
}

func TestColumnRule(t *testing.T) {
	t.Run("missing required column", func(t *testing.T) {
		g := buildGraph(t, `"model.analytics.orders": {
			"name": "orders", "resource_type": "model",
			"columns": {"id": {"name": "id"}}
		}`)
		spec := domain.RuleSpec{
			Name: "audit_columns", Type: domain.RuleColumn, Severity: domain.SeverityError,
			Params: domain.RuleParams{RequiredColumns: []string{"created_at"}},
		}
		violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusNotFound}, spec)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0].Message, "missing required column: created_at")
	})

	t.Run("snake_case naming", func(t *testing.T) {
		g := buildGraph(t, `"model.analytics.orders": {
			"name": "orders", "resource_type": "model",
			"columns": {
				"created_at": {"name": "created_at"},
				"orderTotal": {"name": "orderTotal"}
			}
		}`)
		spec := domain.RuleSpec{
			Name: "snake_case", Type: domain.RuleColumn, Severity: domain.SeverityWarning,
			Params: domain.RuleParams{NamingConvention: "snake_case"},
		}
		violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusNotFound}, spec)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0].Message, `"orderTotal"`)
	})

	t.Run("schema drift against the catalog", func(t *testing.T) {
		g := buildGraph(t, `"model.analytics.orders": {
			"name": "orders", "resource_type": "model",
			"columns": {
				"id": {"name": "id"},
				"legacy_flag": {"name": "legacy_flag"}
			}
		}`)
		spec := domain.RuleSpec{Name: "drift", Type: domain.RuleColumn, Severity: domain.SeverityWarning}
		ctx := &domain.GovernanceContext{Status: domain.StatusFound, SchemaFields: []string{"id", "status"}}
		violations := evaluate(t, g, ctx, spec)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0].Message, `"legacy_flag"`)
	})

	t.Run("no schema no drift check", func(t *testing.T) {
		g := buildGraph(t, `"model.analytics.orders": {
			"name": "orders", "resource_type": "model",
			"columns": {"anything": {"name": "anything"}}
		}`)
		spec := domain.RuleSpec{Name: "drift", Type: domain.RuleColumn, Severity: domain.SeverityWarning}
		assert.Empty(t, evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusNotFound}, spec))
	})
}

func TestLineageRule(t *testing.T) {
	// stg_customers declares raw_customers as its only upstream.
	nodes := `
		"model.analytics.raw_customers": {
			"name": "raw_customers", "resource_type": "model",
			"database": "analytics", "schema": "raw"
		},
		"model.analytics.stg_customers": {
			"name": "stg_customers", "resource_type": "model",
			"database": "analytics", "schema": "staging",
			"depends_on": {"nodes": ["model.analytics.raw_customers"]}
		}`

	mapper := urn.NewMapper("dbt", "")
	spec := domain.RuleSpec{
		Name: "lineage", Type: domain.RuleLineage, Severity: domain.SeverityWarning,
		Params: domain.RuleParams{LineageMode: "strict"},
	}

	lineageContexts := func(g *manifest.Graph, upstream []urn.URN) map[urn.URN]*domain.GovernanceContext {
		contexts := make(map[urn.URN]*domain.GovernanceContext)
		for _, m := range g.Entities {
			u := mapper.DatasetURN(m)
			ctx := &domain.GovernanceContext{URN: u, Status: domain.StatusFound}
			if m.Name == "stg_customers" {
				ctx.Upstream = upstream
			}
			contexts[u] = ctx
		}
		return contexts
	}

	t.Run("matching lineage yields no violations", func(t *testing.T) {
		g := buildGraph(t, nodes)
		raw, ok := g.Lookup("model.analytics.raw_customers")
		require.True(t, ok)

		engine := rules.NewEngine(compile(t, spec), mapper, nil, nil)
		violations := engine.Evaluate(g, lineageContexts(g, []urn.URN{mapper.DatasetURN(raw)}))
		assert.Empty(t, violations)
	})

	t.Run("symmetric difference in one violation", func(t *testing.T) {
		g := buildGraph(t, nodes)
		engine := rules.NewEngine(compile(t, spec), mapper, nil, nil)
		contexts := lineageContexts(g, []urn.URN{"urn:li:dataset:(urn:li:dataPlatform:dbt,analytics.raw.other,PROD)"})

		violations := engine.Evaluate(g, contexts)
		require.Len(t, violations, 1)
		assert.Equal(t, "stg_customers", violations[0].ModelName)
		assert.Len(t, violations[0].Details["declared_not_in_catalog"], 1)
		assert.Len(t, violations[0].Details["catalog_not_declared"], 1)
	})

	t.Run("advisory mode downgrades to info", func(t *testing.T) {
		g := buildGraph(t, nodes)
		advisory := spec
		advisory.Params.LineageMode = "advisory"
		engine := rules.NewEngine(compile(t, advisory), mapper, nil, nil)
		contexts := lineageContexts(g, nil)

		violations := engine.Evaluate(g, contexts)
		require.Len(t, violations, 1)
		assert.Equal(t, domain.SeverityInfo, violations[0].Severity)
	})

	t.Run("fetch error yields lineage unknown", func(t *testing.T) {
		g := buildGraph(t, nodes)
		violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusFetchError}, spec)
		// Both entities report unknown lineage; raw_customers has no
		// declared upstream but its catalog state is still unknowable.
		require.Len(t, violations, 2)
		assert.Contains(t, violations[0].Message, "lineage unknown")
	})
}

func TestTestCoverageRule(t *testing.T) {
	nodes := `
		"model.analytics.orders": {"name": "orders", "resource_type": "model"},
		"model.analytics.customers": {"name": "customers", "resource_type": "model"},
		"test.analytics.not_null_customers_id": {
			"name": "not_null_customers_id", "resource_type": "test",
			"depends_on": {"nodes": ["model.analytics.customers"]}
		}`
	g := buildGraph(t, nodes)
	spec := domain.RuleSpec{Name: "require_tests", Type: domain.RuleTestCoverage, Severity: domain.SeverityWarning}

	violations := evaluate(t, g, &domain.GovernanceContext{Status: domain.StatusNotFound}, spec)
	require.Len(t, violations, 1)
	assert.Equal(t, "orders", violations[0].ModelName)
	assert.Contains(t, violations[0].Message, "requires at least 1")
}
