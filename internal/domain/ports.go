package domain

import (
	"context"

	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

// ContextFetcher retrieves governance records from the catalog for a batch
// of URNs. Implementations must tolerate partial unavailability: a URN the
// catalog does not recognize comes back as not-found, and a URN whose
// retries are exhausted comes back as fetch-error. The returned map always
// has one entry per requested URN.
type ContextFetcher interface {
	FetchBatch(ctx context.Context, urns []urn.URN) (map[urn.URN]*GovernanceContext, error)
}

// CatalogWriter is the catalog's write path: metadata ingestion. It shares
// no state with the read path.
type CatalogWriter interface {
	EmitDatasets(ctx context.Context, datasets []DatasetPayload) error
}

// ConfigLoader loads a governance configuration from a file path.
type ConfigLoader interface {
	Load(path string) (GovernanceConfig, error)
}

// GitInfo reads version-control metadata for run provenance.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
}
