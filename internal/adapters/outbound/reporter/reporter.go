// Package reporter renders ValidationResults. Reporters are pure functions
// registered in a name->function table; none of them mutate the result or
// keep state between calls.
package reporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abdidvp/dbtguard/internal/domain"
)

// Func renders a validation result into one of the supported formats.
type Func func(result *domain.ValidationResult) (string, error)

var registry = map[string]Func{
	"console":  Console,
	"json":     JSON,
	"markdown": Markdown,
	"github":   GitHub,
}

// Get returns the reporter registered under name.
func Get(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (valid: %s)", name, strings.Join(Names(), ", "))
	}
	return fn, nil
}

// Names returns all registered reporter names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// violationsByModel groups violations per model name, sorted by model name
// for presentation. Within a model the run's deterministic order is kept.
func violationsByModel(result *domain.ValidationResult) ([]string, map[string][]domain.Violation) {
	grouped := make(map[string][]domain.Violation)
	for _, v := range result.Violations {
		grouped[v.ModelName] = append(grouped[v.ModelName], v)
	}
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, grouped
}

// passedModels returns the names of models without violations, sorted.
func passedModels(result *domain.ValidationResult) []string {
	var names []string
	for _, m := range result.Models {
		if m.Passed {
			names = append(names, m.Name)
		}
	}
	sort.Strings(names)
	return names
}
