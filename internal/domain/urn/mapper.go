package urn

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/abdidvp/dbtguard/internal/domain/manifest"
)

// URN is a catalog-side dataset identifier. Used only as a lookup key.
type URN string

// platformURNs maps recognized warehouse platforms to their catalog
// platform URNs.
var platformURNs = map[string]string{
	"dbt":        "urn:li:dataPlatform:dbt",
	"bigquery":   "urn:li:dataPlatform:bigquery",
	"snowflake":  "urn:li:dataPlatform:snowflake",
	"redshift":   "urn:li:dataPlatform:redshift",
	"databricks": "urn:li:dataPlatform:databricks",
	"postgres":   "urn:li:dataPlatform:postgres",
}

// SupportedPlatforms returns the recognized platform names, sorted.
func SupportedPlatforms() []string {
	names := make([]string, 0, len(platformURNs))
	for name := range platformURNs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidatePlatform rejects unknown platforms. Called once at
// configuration-validation time, never per entity.
func ValidatePlatform(platform string) error {
	if _, ok := platformURNs[platform]; !ok {
		return fmt.Errorf("unsupported platform %q (supported: %s)",
			platform, strings.Join(SupportedPlatforms(), ", "))
	}
	return nil
}

// Mapper derives dataset URNs from entity coordinates. It is a pure function
// of (platform, coordinates, environment): the same entity always maps to
// the same URN within a run, which makes URNs usable as batch-fetch and
// cache keys.
type Mapper struct {
	platformURN string
	env         string
}

// NewMapper builds a Mapper for a validated platform and environment.
// The environment is uppercased to match catalog fabric conventions.
func NewMapper(platform, environment string) *Mapper {
	purn, ok := platformURNs[platform]
	if !ok {
		purn = "urn:li:dataPlatform:" + platform
	}
	if environment == "" {
		environment = "PROD"
	}
	return &Mapper{platformURN: purn, env: strings.ToUpper(environment)}
}

// Environment returns the normalized environment the mapper stamps on URNs.
func (m *Mapper) Environment() string { return m.env }

// DatasetURN maps an entity to its catalog dataset URN:
// urn:li:dataset:(<platformURN>,<database.schema.name>,<ENV>).
func (m *Mapper) DatasetURN(model *manifest.Model) URN {
	name := url.QueryEscape(m.qualifiedName(model))
	return URN(fmt.Sprintf("urn:li:dataset:(%s,%s,%s)", m.platformURN, name, m.env))
}

// qualifiedName joins the non-empty coordinate parts with dots, the naming
// scheme the catalog uses for warehouse datasets.
func (m *Mapper) qualifiedName(model *manifest.Model) string {
	parts := make([]string, 0, 3)
	if model.Database != "" {
		parts = append(parts, model.Database)
	}
	if model.Schema != "" {
		parts = append(parts, model.Schema)
	}
	parts = append(parts, model.Name)
	return strings.Join(parts, ".")
}

// DatasetName extracts the qualified dataset name back out of a URN, or ""
// if the URN is not a dataset URN.
func DatasetName(u URN) string {
	s := string(u)
	const prefix = "urn:li:dataset:("
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, ")") {
		return ""
	}
	inner := s[len(prefix) : len(s)-1]
	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return ""
	}
	name, err := url.QueryUnescape(parts[1])
	if err != nil {
		return parts[1]
	}
	return name
}
