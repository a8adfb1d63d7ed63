package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/dbtguard/internal/adapters/outbound/config"
	"github.com/abdidvp/dbtguard/internal/domain"
)

const sampleConfig = `
platform: snowflake
environment: prod
fail_on: warning
rules:
  - name: require_description
    type: documentation
    severity: warning
    config:
      min_description_length: 10
  - name: require_ownership
    type: ownership
    severity: error
    config:
      required_ownership_types: [DataOwner]
  - name: lineage_check
    type: lineage
    severity: warning
    enabled: false
    config:
      lineage_mode: advisory
excluded_models: ["stg_tmp_*"]
datahub:
  server: https://datahub.example.com
  batch_size: 50
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "governance.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := config.New().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "snowflake", cfg.Platform)
	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, domain.FailOnWarning, cfg.FailOn)
	assert.Equal(t, []string{"stg_tmp_*"}, cfg.ExcludedModels)
	assert.Equal(t, "https://datahub.example.com", cfg.Catalog.Server)
	assert.Equal(t, 50, cfg.Catalog.BatchSize)

	require.Len(t, cfg.Rules, 3)
	assert.Equal(t, 10, cfg.Rules[0].Params.MinDescriptionLength)
	assert.Equal(t, []string{"DataOwner"}, cfg.Rules[1].Params.RequiredOwnershipTypes)
	assert.False(t, cfg.Rules[2].IsEnabled())
	assert.Equal(t, "advisory", cfg.Rules[2].Params.LineageMode)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := config.New().Load("governance.toml")
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.New().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "reading config")
}

func TestParse_Invalid(t *testing.T) {
	t.Run("malformed YAML", func(t *testing.T) {
		_, err := config.Parse([]byte("rules: ["), "inline")
		assert.ErrorContains(t, err, "parsing inline")
	})

	t.Run("unknown rule type", func(t *testing.T) {
		_, err := config.Parse([]byte(`
rules:
  - name: freshness_check
    type: freshness
`), "inline")
		assert.ErrorContains(t, err, "unknown type")
	})

	t.Run("unknown platform", func(t *testing.T) {
		_, err := config.Parse([]byte("platform: oracle"), "inline")
		assert.ErrorContains(t, err, "unsupported platform")
	})
}

func TestExampleConfig(t *testing.T) {
	t.Run("basic validates", func(t *testing.T) {
		cfg, err := config.ExampleConfig("basic")
		require.NoError(t, err)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("full validates and covers every rule type", func(t *testing.T) {
		cfg, err := config.ExampleConfig("full")
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		types := make(map[domain.RuleType]bool)
		for _, r := range cfg.Rules {
			types[r.Type] = true
		}
		for _, want := range domain.ValidRuleTypes {
			assert.True(t, types[want], "full example should include %s", want)
		}
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, err := config.ExampleConfig("deluxe")
		assert.Error(t, err)
	})
}

func TestRenderExample_Roundtrip(t *testing.T) {
	data, err := config.RenderExample("full")
	require.NoError(t, err)

	cfg, err := config.Parse(data, "rendered")
	require.NoError(t, err)
	assert.Equal(t, "snowflake", cfg.Platform)
	assert.NotEmpty(t, cfg.Rules)
}
