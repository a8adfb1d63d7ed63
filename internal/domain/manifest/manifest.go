package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Resource types that become graph entities. Test nodes are folded into
// their parent model's test count instead.
const (
	ResourceModel    = "model"
	ResourceSeed     = "seed"
	ResourceSnapshot = "snapshot"
	ResourceSource   = "source"
	resourceTest     = "test"
)

// Schema versions this parser understands. dbt bumps the manifest schema
// with most minor releases; the node fields we read have been stable since v4.
const (
	minSchemaVersion = 4
	maxSchemaVersion = 12
)

// Column is a declared column with its documentation.
type Column struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DataType    string `json:"data_type,omitempty"`
}

// Model is one buildable unit from the manifest: a model, seed, snapshot or
// source. Created once per run and immutable afterwards.
type Model struct {
	UniqueID     string         `json:"unique_id"`
	Name         string         `json:"name"`
	ResourceType string         `json:"resource_type"`
	PackageName  string         `json:"package_name"`
	Path         string         `json:"path,omitempty"`
	Database     string         `json:"database,omitempty"`
	Schema       string         `json:"schema,omitempty"`
	Description  string         `json:"description,omitempty"`
	Materialized string         `json:"materialized,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Columns      []Column       `json:"columns,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
	DependsOn    []string       `json:"depends_on,omitempty"`
	TestCount    int            `json:"test_count"`
}

// MetaOwners returns owners declared in the node's meta block, accepting
// both a single string and a list.
func (m *Model) MetaOwners() []string {
	raw, ok := m.Meta["owner"]
	if !ok {
		raw, ok = m.Meta["owners"]
	}
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		var owners []string
		for _, o := range v {
			if s, ok := o.(string); ok && s != "" {
				owners = append(owners, s)
			}
		}
		return owners
	}
	return nil
}

// Metadata holds the manifest header fields we act on.
type Metadata struct {
	SchemaVersion string `json:"dbt_schema_version"`
	DbtVersion    string `json:"dbt_version"`
	ProjectName   string `json:"project_name,omitempty"`
	InvocationID  string `json:"invocation_id,omitempty"`
}

// Graph is the parsed dependency graph. Entities keeps the manifest's
// declaration order so every downstream iteration is deterministic.
type Graph struct {
	Metadata Metadata
	Entities []*Model // models, seeds, snapshots — the units rules run on
	Sources  []*Model // sources participate in lineage but are not evaluated
	byID     map[string]*Model
}

// Lookup returns the entity or source with the given unique id.
func (g *Graph) Lookup(uniqueID string) (*Model, bool) {
	m, ok := g.byID[uniqueID]
	return m, ok
}

type rawNode struct {
	Name             string          `json:"name"`
	ResourceType     string          `json:"resource_type"`
	PackageName      string          `json:"package_name"`
	Path             string          `json:"path"`
	OriginalFilePath string          `json:"original_file_path"`
	Database         string          `json:"database"`
	Schema           string          `json:"schema"`
	Description      string          `json:"description"`
	Tags             []string        `json:"tags"`
	RawColumns       json.RawMessage `json:"columns"`
	Meta             map[string]any  `json:"meta"`
	Config           struct {
		Materialized string         `json:"materialized"`
		Meta         map[string]any `json:"meta"`
	} `json:"config"`
	DependsOn struct {
		Nodes []string `json:"nodes"`
	} `json:"depends_on"`
}

type rawColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DataType    string `json:"data_type"`
}

// Build parses raw manifest bytes into a Graph. It is a pure transformation:
// no file or network access. Structural problems surface as *ParseError or
// *DanglingDependencyError; nothing is silently dropped.
func Build(data []byte) (*Graph, error) {
	var doc struct {
		Metadata *Metadata       `json:"metadata"`
		Nodes    json.RawMessage `json:"nodes"`
		Sources  json.RawMessage `json:"sources"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Err: err}
	}
	if doc.Metadata == nil {
		return nil, &ParseError{Reason: "missing required key \"metadata\""}
	}
	if doc.Nodes == nil {
		return nil, &ParseError{Reason: "missing required key \"nodes\""}
	}
	if err := checkSchemaVersion(doc.Metadata.SchemaVersion); err != nil {
		return nil, err
	}

	g := &Graph{
		Metadata: *doc.Metadata,
		byID:     make(map[string]*Model),
	}

	// Walk the nodes object token by token: encoding/json maps would lose
	// the manifest's declaration order, and deterministic entity iteration
	// depends on it.
	testCounts := make(map[string]int)
	err := walkObject(doc.Nodes, func(id string, raw json.RawMessage) error {
		var node rawNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return &ParseError{Reason: fmt.Sprintf("node %s", id), Err: err}
		}
		switch node.ResourceType {
		case ResourceModel, ResourceSeed, ResourceSnapshot:
			m, err := buildModel(id, &node)
			if err != nil {
				return err
			}
			g.Entities = append(g.Entities, m)
			g.byID[id] = m
		case resourceTest:
			for _, dep := range node.DependsOn.Nodes {
				testCounts[dep]++
			}
		}
		// Analyses, operations etc. carry no governance metadata.
		return nil
	})
	if err != nil {
		return nil, err
	}

	if doc.Sources != nil {
		err = walkObject(doc.Sources, func(id string, raw json.RawMessage) error {
			var node rawNode
			if err := json.Unmarshal(raw, &node); err != nil {
				return &ParseError{Reason: fmt.Sprintf("source %s", id), Err: err}
			}
			m, err := buildModel(id, &node)
			if err != nil {
				return err
			}
			m.ResourceType = ResourceSource
			g.Sources = append(g.Sources, m)
			g.byID[id] = m
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for _, m := range g.Entities {
		m.TestCount = testCounts[m.UniqueID]
		for _, dep := range m.DependsOn {
			if _, ok := g.byID[dep]; !ok {
				return nil, &DanglingDependencyError{NodeID: m.UniqueID, Ref: dep}
			}
		}
	}

	return g, nil
}

func buildModel(id string, node *rawNode) (*Model, error) {
	m := &Model{
		UniqueID:     id,
		Name:         node.Name,
		ResourceType: node.ResourceType,
		PackageName:  node.PackageName,
		Path:         node.Path,
		Database:     node.Database,
		Schema:       node.Schema,
		Description:  node.Description,
		Materialized: node.Config.Materialized,
		Tags:         node.Tags,
		Meta:         mergeMeta(node.Meta, node.Config.Meta),
		DependsOn:    node.DependsOn.Nodes,
	}
	if m.Name == "" {
		m.Name = id
	}
	if m.PackageName == "" {
		m.PackageName = packageFromID(id)
	}
	if node.RawColumns != nil {
		// Columns are a JSON object in the manifest; preserve their
		// declaration order too so per-column findings come out stable.
		err := walkObject(node.RawColumns, func(name string, raw json.RawMessage) error {
			var col rawColumn
			if err := json.Unmarshal(raw, &col); err != nil {
				return &ParseError{Reason: fmt.Sprintf("node %s column %s", id, name), Err: err}
			}
			if col.Name == "" {
				col.Name = name
			}
			m.Columns = append(m.Columns, Column{
				Name:        col.Name,
				Description: col.Description,
				DataType:    col.DataType,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// walkObject iterates a JSON object's members in document order.
func walkObject(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return &ParseError{Reason: "reading object", Err: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &ParseError{Reason: fmt.Sprintf("expected object, got %v", tok)}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return &ParseError{Reason: "reading object key", Err: err}
		}
		key, ok := keyTok.(string)
		if !ok {
			return &ParseError{Reason: fmt.Sprintf("expected string key, got %v", keyTok)}
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return &ParseError{Reason: fmt.Sprintf("reading value of %q", key), Err: err}
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}

// checkSchemaVersion accepts URLs like
// https://schemas.getdbt.com/dbt/manifest/v9.json within the supported range.
func checkSchemaVersion(version string) error {
	if version == "" {
		return &ParseError{Reason: "missing metadata.dbt_schema_version"}
	}
	idx := strings.LastIndex(version, "/v")
	if idx < 0 {
		return &ParseError{Reason: fmt.Sprintf("unrecognized schema version %q", version)}
	}
	num := strings.TrimSuffix(version[idx+2:], ".json")
	n, err := strconv.Atoi(num)
	if err != nil {
		return &ParseError{Reason: fmt.Sprintf("unrecognized schema version %q", version), Err: err}
	}
	if n < minSchemaVersion || n > maxSchemaVersion {
		return &ParseError{Reason: fmt.Sprintf("unsupported schema version v%d (supported: v%d-v%d)", n, minSchemaVersion, maxSchemaVersion)}
	}
	return nil
}

func mergeMeta(nodeMeta, configMeta map[string]any) map[string]any {
	if len(nodeMeta) == 0 && len(configMeta) == 0 {
		return nil
	}
	merged := make(map[string]any, len(nodeMeta)+len(configMeta))
	for k, v := range configMeta {
		merged[k] = v
	}
	for k, v := range nodeMeta {
		merged[k] = v // node-level meta wins over config meta
	}
	return merged
}

func packageFromID(id string) string {
	parts := strings.Split(id, ".")
	if len(parts) >= 2 {
		return parts[1]
	}
	return "root"
}
