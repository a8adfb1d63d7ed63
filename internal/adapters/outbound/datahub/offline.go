package datahub

import (
	"context"

	"github.com/abdidvp/dbtguard/internal/domain"
	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

// Offline implements domain.ContextFetcher without a catalog: every URN
// comes back not-found. Used when no catalog server is configured, so
// artifact-only rules still run and catalog-dependent rules report the
// absence as a finding.
type Offline struct{}

func (Offline) FetchBatch(_ context.Context, urns []urn.URN) (map[urn.URN]*domain.GovernanceContext, error) {
	contexts := make(map[urn.URN]*domain.GovernanceContext, len(urns))
	for _, u := range urns {
		contexts[u] = &domain.GovernanceContext{URN: u, Status: domain.StatusNotFound}
	}
	return contexts, nil
}
