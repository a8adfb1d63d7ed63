package datahub

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abdidvp/dbtguard/internal/domain"
	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

// maxParallelBatches bounds the number of concurrent catalog requests.
const maxParallelBatches = 4

// Fetcher implements domain.ContextFetcher on top of Client with a
// run-scoped cache: a URN is fetched at most once per run, no matter how
// many rules need it. Construct one Fetcher per pipeline invocation.
type Fetcher struct {
	client *Client

	mu    sync.Mutex
	cache map[urn.URN]*domain.GovernanceContext
}

// NewFetcher creates a run-scoped fetcher around the client.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{
		client: client,
		cache:  make(map[urn.URN]*domain.GovernanceContext),
	}
}

// FetchBatch retrieves governance context for the given URNs, chunking them
// into bounded batches issued concurrently. Partial unavailability never
// fails the call: unrecognized URNs come back not-found and URNs whose
// retries were exhausted come back fetch-error. The only error returned is
// context cancellation.
func (f *Fetcher) FetchBatch(ctx context.Context, urns []urn.URN) (map[urn.URN]*domain.GovernanceContext, error) {
	result := make(map[urn.URN]*domain.GovernanceContext, len(urns))

	var misses []urn.URN
	f.mu.Lock()
	for _, u := range urns {
		if _, ok := result[u]; ok {
			continue
		}
		if cached, ok := f.cache[u]; ok {
			result[u] = cached
		} else if !contains(misses, u) {
			misses = append(misses, u)
		}
	}
	f.mu.Unlock()

	if len(misses) == 0 {
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelBatches)

	fetched := make(map[urn.URN]*domain.GovernanceContext, len(misses))
	var fetchedMu sync.Mutex

	size := f.client.BatchSize()
	for start := 0; start < len(misses); start += size {
		batch := misses[start:min(start+size, len(misses))]
		g.Go(func() error {
			records, err := f.client.fetchWithRetry(gctx, batch)
			if err != nil {
				return err
			}
			fetchedMu.Lock()
			for u, rec := range records {
				fetched[u] = rec
			}
			fetchedMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	for u, rec := range fetched {
		f.cache[u] = rec
		result[u] = rec
	}
	f.mu.Unlock()
	return result, nil
}

func contains(urns []urn.URN, u urn.URN) bool {
	for _, x := range urns {
		if x == u {
			return true
		}
	}
	return false
}
