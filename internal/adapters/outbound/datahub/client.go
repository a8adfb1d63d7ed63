// Package datahub talks to the metadata catalog over its batched read and
// write endpoints. All network interaction of a run is confined here.
package datahub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/abdidvp/dbtguard/internal/domain"
	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultBatchSize  = 25
	defaultMaxRetries = 3

	batchGetPath = "/api/governance/datasets/batch-get"
	entitiesPath = "/api/governance/datasets"
	healthPath   = "/health"
)

// Client is a thin HTTP client for the catalog. Reads and writes share the
// connection settings but no other state.
type Client struct {
	server     string
	token      string
	httpClient *http.Client
	batchSize  int
	maxRetries uint64
}

// NewClient builds a Client from catalog settings, applying defaults for
// anything unset.
func NewClient(cfg domain.CatalogConfig) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	retries := defaultMaxRetries
	if cfg.MaxRetries > 0 {
		retries = cfg.MaxRetries
	}
	return &Client{
		server:     trimTrailingSlash(cfg.Server),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		batchSize:  batchSize,
		maxRetries: uint64(retries),
	}
}

// BatchSize returns the bounded batch size used for catalog reads.
func (c *Client) BatchSize() int { return c.batchSize }

// HealthCheck reports whether the catalog is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, healthPath, nil, nil)
}

type datasetRecord struct {
	URN          urn.URN        `json:"urn"`
	Found        bool           `json:"found"`
	Owners       []domain.Owner `json:"owners"`
	Description  string         `json:"description"`
	Tags         []string       `json:"tags"`
	SchemaFields []string       `json:"schemaFields"`
	Upstream     []urn.URN      `json:"upstream"`
	Downstream   []urn.URN      `json:"downstream"`
}

// batchGet performs one batched read. URNs the catalog does not recognize
// come back with found=false; transport and server errors are returned to
// the caller for retry.
func (c *Client) batchGet(ctx context.Context, urns []urn.URN) (map[urn.URN]*domain.GovernanceContext, error) {
	var resp struct {
		Results []datasetRecord `json:"results"`
	}
	req := map[string]any{"urns": urns}
	if err := c.do(ctx, http.MethodPost, batchGetPath, req, &resp); err != nil {
		return nil, err
	}

	records := make(map[urn.URN]*domain.GovernanceContext, len(urns))
	for _, rec := range resp.Results {
		status := domain.StatusFound
		if !rec.Found {
			status = domain.StatusNotFound
		}
		records[rec.URN] = &domain.GovernanceContext{
			URN:          rec.URN,
			Status:       status,
			Owners:       rec.Owners,
			Description:  rec.Description,
			Tags:         rec.Tags,
			SchemaFields: rec.SchemaFields,
			Upstream:     rec.Upstream,
			Downstream:   rec.Downstream,
		}
	}
	// URNs missing from the response are treated as not recognized.
	for _, u := range urns {
		if _, ok := records[u]; !ok {
			records[u] = &domain.GovernanceContext{URN: u, Status: domain.StatusNotFound}
		}
	}
	return records, nil
}

// fetchWithRetry wraps batchGet in capped exponential backoff. A request
// timeout counts as an attempt. After exhausting retries every URN in the
// batch is recorded as fetch-error; only context cancellation aborts.
func (c *Client) fetchWithRetry(ctx context.Context, urns []urn.URN) (map[urn.URN]*domain.GovernanceContext, error) {
	var records map[urn.URN]*domain.GovernanceContext
	operation := func() error {
		var err error
		records, err = c.batchGet(ctx, urns)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		failed := make(map[urn.URN]*domain.GovernanceContext, len(urns))
		for _, u := range urns {
			failed[u] = &domain.GovernanceContext{URN: u, Status: domain.StatusFetchError}
		}
		return failed, nil
	}
	return records, nil
}

// EmitDatasets pushes dataset payloads to the catalog's write path.
func (c *Client) EmitDatasets(ctx context.Context, datasets []domain.DatasetPayload) error {
	req := map[string]any{"datasets": datasets}
	if err := c.do(ctx, http.MethodPost, entitiesPath, req, nil); err != nil {
		return fmt.Errorf("emitting %d dataset(s): %w", len(datasets), err)
	}
	return nil
}

// statusError marks HTTP responses that must not be retried.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog returned %d: %s", e.code, e.body)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.server+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err // network errors and timeouts are retryable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		serr := &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(data))}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return serr
		}
		return backoff.Permanent(serr)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// IsPermanent reports whether err is a non-retryable catalog error.
func IsPermanent(err error) bool {
	var serr *statusError
	return errors.As(err, &serr) && serr.code < 500 && serr.code != http.StatusTooManyRequests
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
