package application

import (
	"context"
	"fmt"

	"github.com/abdidvp/dbtguard/internal/domain"
	"github.com/abdidvp/dbtguard/internal/domain/manifest"
	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

// IngestService pushes a project's declared metadata into the catalog: the
// write-path counterpart of validation. It shares no state with the read
// path.
type IngestService struct {
	writer domain.CatalogWriter
}

func NewIngestService(writer domain.CatalogWriter) *IngestService {
	return &IngestService{writer: writer}
}

// Ingest parses the manifest and emits one dataset payload per entity.
// Returns the number of datasets emitted.
func (s *IngestService) Ingest(ctx context.Context, artifact []byte, cfg domain.GovernanceConfig) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("invalid configuration: %w", err)
	}
	graph, err := manifest.Build(artifact)
	if err != nil {
		return 0, err
	}

	platform := cfg.Platform
	if platform == "" {
		platform = "dbt"
	}
	mapper := urn.NewMapper(platform, cfg.Environment)

	payloads := make([]domain.DatasetPayload, 0, len(graph.Entities))
	for _, m := range graph.Entities {
		payloads = append(payloads, buildPayload(mapper, m))
	}
	if len(payloads) == 0 {
		return 0, nil
	}
	if err := s.writer.EmitDatasets(ctx, payloads); err != nil {
		return 0, err
	}
	return len(payloads), nil
}

func buildPayload(mapper *urn.Mapper, m *manifest.Model) domain.DatasetPayload {
	u := mapper.DatasetURN(m)
	payload := domain.DatasetPayload{
		URN:           u,
		Name:          m.Name,
		QualifiedName: urn.DatasetName(u),
		Description:   m.Description,
		Tags:          m.Tags,
		CustomProperties: map[string]string{
			"unique_id":    m.UniqueID,
			"package_name": m.PackageName,
			"path":         m.Path,
			"resource":     m.ResourceType,
		},
	}
	if m.Materialized != "" {
		payload.CustomProperties["materialized"] = m.Materialized
	}
	for _, owner := range m.MetaOwners() {
		payload.Owners = append(payload.Owners, domain.Owner{
			Owner: "urn:li:corpuser:" + owner,
			Type:  domain.OwnerTypeDataOwner,
		})
	}
	for _, col := range m.Columns {
		payload.Fields = append(payload.Fields, domain.SchemaField{
			FieldPath:   col.Name,
			Description: col.Description,
			NativeType:  col.DataType,
		})
	}
	return payload
}
