package domain

import "github.com/abdidvp/dbtguard/internal/domain/urn"

// FetchStatus records how a catalog lookup for a single URN ended.
// not-found is a meaningful governance state, distinct from fetch-error.
type FetchStatus string

const (
	StatusFound      FetchStatus = "found"
	StatusNotFound   FetchStatus = "not-found"
	StatusFetchError FetchStatus = "fetch-error"
)

// OwnershipType values the catalog recognizes.
const (
	OwnerTypeDataOwner      = "DataOwner"
	OwnerTypeTechnicalOwner = "TechnicalOwner"
	OwnerTypeSteward        = "Steward"
	OwnerTypeDelegate       = "Delegate"
)

// ValidOwnershipTypes enumerates recognized ownership types.
var ValidOwnershipTypes = []string{
	OwnerTypeDataOwner, OwnerTypeTechnicalOwner,
	OwnerTypeSteward, OwnerTypeDelegate,
}

// Owner is one {identity, ownership-type} pair from the catalog.
type Owner struct {
	Owner string `json:"owner"`
	Type  string `json:"type"`
}

// GovernanceContext is the per-resource record fetched from the catalog.
// Owned by the fetcher's result set for one run; never merged or mutated
// after creation.
type GovernanceContext struct {
	URN          urn.URN     `json:"urn"`
	Status       FetchStatus `json:"status"`
	Owners       []Owner     `json:"owners,omitempty"`
	Description  string      `json:"description,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	SchemaFields []string    `json:"schema_fields,omitempty"`
	Upstream     []urn.URN   `json:"upstream,omitempty"`
	Downstream   []urn.URN   `json:"downstream,omitempty"`
}

// HasTag reports whether the catalog record carries the tag.
func (c *GovernanceContext) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SchemaField is one column in a dataset payload pushed to the catalog.
type SchemaField struct {
	FieldPath   string `json:"fieldPath"`
	Description string `json:"description,omitempty"`
	NativeType  string `json:"nativeDataType,omitempty"`
}

// DatasetPayload is the write-path counterpart of GovernanceContext: the
// aspects emitted when ingesting a project's metadata into the catalog.
// The write path shares no state with the read path.
type DatasetPayload struct {
	URN              urn.URN           `json:"urn"`
	Name             string            `json:"name"`
	QualifiedName    string            `json:"qualifiedName"`
	Description      string            `json:"description,omitempty"`
	CustomProperties map[string]string `json:"customProperties,omitempty"`
	Owners           []Owner           `json:"owners,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	Fields           []SchemaField     `json:"fields,omitempty"`
}
