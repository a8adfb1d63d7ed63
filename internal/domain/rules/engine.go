package rules

import (
	"fmt"
	"path"

	"github.com/abdidvp/dbtguard/internal/domain"
	"github.com/abdidvp/dbtguard/internal/domain/manifest"
	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

// MergedView is the read-only union of one entity and its (possibly absent)
// catalog context, constructed lazily per entity during evaluation. Context
// is never nil: a missing or failed lookup is passed through explicitly via
// its Status so individual checks decide how to treat it.
type MergedView struct {
	Model            *manifest.Model
	URN              urn.URN
	Context          *domain.GovernanceContext
	DeclaredUpstream []urn.URN // URNs of the entity's declared dependencies
}

// checkFunc evaluates one compiled rule against one merged view. Checks
// never fail: every outcome is representable as zero or more violations.
type checkFunc func(view MergedView, rule CompiledRule) []domain.Violation

// checks is the dispatch table for the closed rule-type set. Registering a
// new type here is the only extension point; the engine itself never
// special-cases a type beyond dispatch.
var checks = map[domain.RuleType]checkFunc{
	domain.RuleOwnership:     checkOwnership,
	domain.RuleDocumentation: checkDocumentation,
	domain.RuleTag:           checkTag,
	domain.RuleColumn:        checkColumn,
	domain.RuleLineage:       checkLineage,
	domain.RuleTestCoverage:  checkTestCoverage,
}

// CompiledRule is a configured rule instance with validated parameters,
// ready for evaluation. Severity and type are fixed for the run.
type CompiledRule struct {
	Name     string
	Type     domain.RuleType
	Severity domain.Severity
	Params   Params
	check    checkFunc
}

func (r CompiledRule) violation(m *manifest.Model, message string, details map[string]any) domain.Violation {
	return domain.Violation{
		RuleName:      r.Name,
		RuleType:      r.Type,
		Severity:      r.Severity,
		ModelName:     m.Name,
		ModelUniqueID: m.UniqueID,
		Message:       message,
		Details:       details,
	}
}

// Compile turns rule specs into compiled rules, preserving configuration
// order. It fails fast on the first malformed rule so that no evaluation
// starts with a partially valid rule set. Disabled rules are skipped.
func Compile(specs []domain.RuleSpec) ([]CompiledRule, error) {
	compiled := make([]CompiledRule, 0, len(specs))
	for _, spec := range specs {
		if !spec.IsEnabled() {
			continue
		}
		check, ok := checks[spec.Type]
		if !ok {
			return nil, fmt.Errorf("rule %q: unknown type %q", spec.Name, spec.Type)
		}
		params, err := bindParams(spec.Type, spec.Params)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", spec.Name, err)
		}
		severity := spec.Severity
		if severity == "" {
			severity = domain.SeverityWarning
		}
		compiled = append(compiled, CompiledRule{
			Name:     spec.Name,
			Type:     spec.Type,
			Severity: severity,
			Params:   params,
			check:    check,
		})
	}
	return compiled, nil
}

// Engine evaluates compiled rules against a graph merged with catalog
// context. Evaluation is sequential and lock-free: every input is immutable
// and no check touches the network.
type Engine struct {
	rules    []CompiledRule
	mapper   *urn.Mapper
	included []string
	excluded []string
}

// NewEngine builds an engine for one run.
func NewEngine(rules []CompiledRule, mapper *urn.Mapper, included, excluded []string) *Engine {
	return &Engine{rules: rules, mapper: mapper, included: included, excluded: excluded}
}

// Evaluate walks entities in graph order and rules in configuration order,
// producing a deterministic violation sequence. Context lookups that came
// back not-found or fetch-error flow into the checks unchanged.
func (e *Engine) Evaluate(graph *manifest.Graph, contexts map[urn.URN]*domain.GovernanceContext) []domain.Violation {
	var violations []domain.Violation
	for _, model := range graph.Entities {
		if !e.shouldEvaluate(model.Name) {
			continue
		}
		view := e.mergedView(graph, model, contexts)
		for _, rule := range e.rules {
			violations = append(violations, rule.check(view, rule)...)
		}
	}
	return violations
}

// EvaluatedEntities returns the entities that pass the include/exclude
// filters, in graph order.
func (e *Engine) EvaluatedEntities(graph *manifest.Graph) []*manifest.Model {
	var out []*manifest.Model
	for _, m := range graph.Entities {
		if e.shouldEvaluate(m.Name) {
			out = append(out, m)
		}
	}
	return out
}

func (e *Engine) mergedView(graph *manifest.Graph, model *manifest.Model, contexts map[urn.URN]*domain.GovernanceContext) MergedView {
	u := e.mapper.DatasetURN(model)
	ctx := contexts[u]
	if ctx == nil {
		ctx = &domain.GovernanceContext{URN: u, Status: domain.StatusNotFound}
	}
	upstream := make([]urn.URN, 0, len(model.DependsOn))
	for _, dep := range model.DependsOn {
		parent, ok := graph.Lookup(dep)
		if !ok {
			continue // graph construction already rejected dangling refs
		}
		upstream = append(upstream, e.mapper.DatasetURN(parent))
	}
	return MergedView{Model: model, URN: u, Context: ctx, DeclaredUpstream: upstream}
}

// shouldEvaluate applies the configured include/exclude glob patterns to a
// model name. Exclusion wins; an empty include list means all models.
func (e *Engine) shouldEvaluate(name string) bool {
	for _, pattern := range e.excluded {
		if ok, _ := path.Match(pattern, name); ok {
			return false
		}
	}
	if len(e.included) == 0 {
		return true
	}
	for _, pattern := range e.included {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
