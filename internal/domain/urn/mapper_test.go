package urn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/dbtguard/internal/domain/manifest"
	"github.com/abdidvp/dbtguard/internal/domain/urn"
)

func TestDatasetURN(t *testing.T) {
	m := urn.NewMapper("snowflake", "prod")
	model := &manifest.Model{Name: "orders", Database: "analytics", Schema: "marts"}

	u := m.DatasetURN(model)
	assert.Equal(t, urn.URN("urn:li:dataset:(urn:li:dataPlatform:snowflake,analytics.marts.orders,PROD)"), u)
}

func TestDatasetURN_Deterministic(t *testing.T) {
	m := urn.NewMapper("bigquery", "DEV")
	model := &manifest.Model{Name: "orders", Database: "analytics", Schema: "marts"}

	first := m.DatasetURN(model)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.DatasetURN(model))
	}
}

func TestDatasetURN_DistinctCoordinates(t *testing.T) {
	m := urn.NewMapper("dbt", "")
	a := m.DatasetURN(&manifest.Model{Name: "orders", Database: "analytics", Schema: "marts"})
	b := m.DatasetURN(&manifest.Model{Name: "orders", Database: "analytics", Schema: "staging"})
	c := m.DatasetURN(&manifest.Model{Name: "orders", Database: "warehouse", Schema: "marts"})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, b, c)
}

func TestDatasetURN_PartialCoordinates(t *testing.T) {
	m := urn.NewMapper("dbt", "")

	t.Run("no database", func(t *testing.T) {
		u := m.DatasetURN(&manifest.Model{Name: "orders", Schema: "marts"})
		assert.Equal(t, "marts.orders", urn.DatasetName(u))
	})

	t.Run("name only", func(t *testing.T) {
		u := m.DatasetURN(&manifest.Model{Name: "orders"})
		assert.Equal(t, "orders", urn.DatasetName(u))
	})
}

func TestNewMapper_EnvironmentDefaults(t *testing.T) {
	assert.Equal(t, "PROD", urn.NewMapper("dbt", "").Environment())
	assert.Equal(t, "DEV", urn.NewMapper("dbt", "dev").Environment())
	assert.Equal(t, "STAGING", urn.NewMapper("dbt", "Staging").Environment())
}

func TestDatasetName(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		m := urn.NewMapper("postgres", "prod")
		u := m.DatasetURN(&manifest.Model{Name: "orders", Database: "shop", Schema: "public"})
		assert.Equal(t, "shop.public.orders", urn.DatasetName(u))
	})

	t.Run("not a dataset URN", func(t *testing.T) {
		assert.Equal(t, "", urn.DatasetName(urn.URN("urn:li:corpuser:alice")))
	})
}

func TestValidatePlatform(t *testing.T) {
	for _, platform := range urn.SupportedPlatforms() {
		assert.NoError(t, urn.ValidatePlatform(platform))
	}

	err := urn.ValidatePlatform("oracle")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported platform")
}
