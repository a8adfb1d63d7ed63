package domain

import "time"

// Severity classifies a violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rank orders severities for threshold comparison: error > warning > info.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// RuleType identifies a built-in governance rule. The set is closed: new
// types are added by registering a new check under a new name, not by
// special-casing the engine.
type RuleType string

const (
	RuleOwnership     RuleType = "ownership"
	RuleDocumentation RuleType = "documentation"
	RuleTag           RuleType = "tag"
	RuleColumn        RuleType = "column"
	RuleLineage       RuleType = "lineage"
	RuleTestCoverage  RuleType = "test-coverage"
)

// ValidRuleTypes enumerates all recognized rule types.
var ValidRuleTypes = []RuleType{
	RuleOwnership, RuleDocumentation, RuleTag,
	RuleColumn, RuleLineage, RuleTestCoverage,
}

// FailOn is the minimum violation severity that fails a run.
type FailOn string

const (
	FailOnError   FailOn = "error"
	FailOnWarning FailOn = "warning"
	// FailOnNever always passes regardless of violations. An explicit
	// opt-out: violation detail is still reported in full.
	FailOnNever FailOn = "never"
)

func (f FailOn) Valid() bool {
	return f == FailOnError || f == FailOnWarning || f == FailOnNever
}

// threshold returns the minimum severity rank that converts the run to FAIL.
func (f FailOn) threshold() int {
	switch f {
	case FailOnError:
		return SeverityError.Rank()
	case FailOnWarning:
		return SeverityWarning.Rank()
	}
	return 0
}

// Decision is the aggregate pass/fail outcome of a run.
type Decision string

const (
	DecisionPass Decision = "pass"
	DecisionFail Decision = "fail"
)

// Decide computes the overall decision from the configured threshold.
func Decide(violations []Violation, failOn FailOn) Decision {
	if failOn == FailOnNever {
		return DecisionPass
	}
	min := failOn.threshold()
	for _, v := range violations {
		if v.Severity.Rank() >= min {
			return DecisionFail
		}
	}
	return DecisionPass
}

// Violation is a single rule-check failure for one entity. Created only by
// the rule engine; immutable once emitted. Violations are collected in
// entity iteration order, then rule configuration order.
type Violation struct {
	RuleName      string         `json:"rule_name"`
	RuleType      RuleType       `json:"rule_type"`
	Severity      Severity       `json:"severity"`
	ModelName     string         `json:"model_name"`
	ModelUniqueID string         `json:"model_unique_id,omitempty"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details,omitempty"`
}

// ModelStatus is the per-entity outcome, in entity iteration order.
type ModelStatus struct {
	Name       string `json:"name"`
	UniqueID   string `json:"unique_id"`
	Passed     bool   `json:"passed"`
	Violations int    `json:"violations"`
}

// ValidationResult is the aggregate output of one pipeline run. Computed
// once, immutable after return; reporters are pure consumers of it.
type ValidationResult struct {
	RunID           string        `json:"run_id"`
	GeneratedAt     time.Time     `json:"generated_at"`
	CommitHash      string        `json:"commit_hash,omitempty"`
	Platform        string        `json:"platform"`
	Environment     string        `json:"environment"`
	FailOn          FailOn        `json:"fail_on"`
	Decision        Decision      `json:"decision"`
	TotalModels     int           `json:"total_models"`
	PassedModels    int           `json:"passed_models"`
	FailedModels    int           `json:"failed_models"`
	TotalViolations int           `json:"total_violations"`
	ErrorCount      int           `json:"error_count"`
	WarningCount    int           `json:"warning_count"`
	InfoCount       int           `json:"info_count"`
	Models          []ModelStatus `json:"models"`
	Violations      []Violation   `json:"violations"`
	DurationSeconds float64       `json:"duration_seconds"`
}
