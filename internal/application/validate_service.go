package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abdidvp/dbtguard/internal/domain"
	"github.com/abdidvp/dbtguard/internal/domain/manifest"
	"github.com/abdidvp/dbtguard/internal/domain/rules"
	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

// ValidateService orchestrates the validation pipeline:
// parse artifact -> compile rules -> map URNs -> fetch context -> evaluate -> aggregate.
type ValidateService struct {
	fetcher domain.ContextFetcher
	git     domain.GitInfo
}

// NewValidateService creates a ValidateService. The git adapter may be nil
// when run provenance is not wanted.
func NewValidateService(fetcher domain.ContextFetcher, git domain.GitInfo) *ValidateService {
	return &ValidateService{fetcher: fetcher, git: git}
}

// Run executes one validation over raw manifest bytes. Configuration and
// artifact problems abort immediately with a specific error; catalog
// unavailability is folded into the result and never aborts. The run is
// cancellable between stages and during the fetch.
func (s *ValidateService) Run(ctx context.Context, artifact []byte, cfg domain.GovernanceConfig, projectPath string) (*domain.ValidationResult, error) {
	start := time.Now()

	// 1. Fail fast on malformed configuration, before any parse or fetch.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	compiled, err := rules.Compile(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// 2. Parse the artifact into the dependency graph.
	graph, err := manifest.Build(artifact)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Map evaluated entities to catalog URNs.
	platform := cfg.Platform
	if platform == "" {
		platform = "dbt"
	}
	mapper := urn.NewMapper(platform, cfg.Environment)
	engine := rules.NewEngine(compiled, mapper, cfg.IncludedModels, cfg.ExcludedModels)

	entities := engine.EvaluatedEntities(graph)
	urns := make([]urn.URN, 0, len(entities))
	for _, m := range entities {
		urns = append(urns, mapper.DatasetURN(m))
	}

	// 4. Fetch governance context in one batched pass. All network I/O of
	// the run happens here; evaluation below reads only immutable data.
	contexts, err := s.fetcher.FetchBatch(ctx, urns)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog context: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 5. Evaluate and aggregate.
	violations := engine.Evaluate(graph, contexts)

	failOn := cfg.FailOn
	if failOn == "" {
		failOn = domain.FailOnError
	}

	result := &domain.ValidationResult{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Platform:    platform,
		Environment: mapper.Environment(),
		FailOn:      failOn,
		Decision:    domain.Decide(violations, failOn),
		TotalModels: len(entities),
		Violations:  violations,
	}

	counts := make(map[string]int, len(entities))
	for _, v := range violations {
		counts[v.ModelUniqueID]++
		switch v.Severity {
		case domain.SeverityError:
			result.ErrorCount++
		case domain.SeverityWarning:
			result.WarningCount++
		case domain.SeverityInfo:
			result.InfoCount++
		}
	}
	result.TotalViolations = len(violations)

	for _, m := range entities {
		n := counts[m.UniqueID]
		result.Models = append(result.Models, domain.ModelStatus{
			Name:       m.Name,
			UniqueID:   m.UniqueID,
			Passed:     n == 0,
			Violations: n,
		})
		if n == 0 {
			result.PassedModels++
		} else {
			result.FailedModels++
		}
	}

	if s.git != nil && projectPath != "" && s.git.IsGitRepo(projectPath) {
		if hash, err := s.git.CommitHash(projectPath); err == nil {
			result.CommitHash = hash
		}
	}

	result.DurationSeconds = time.Since(start).Seconds()
	return result, nil
}
