package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/dbtguard/internal/adapters/inbound/cli"
)

func fixturePath(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("../../../../testdata/dbt-project")
	require.NoError(t, err)
	return abs
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, cli.ExitCode(nil))
	assert.Equal(t, 1, cli.ExitCode(cli.ErrThresholdExceeded))
	assert.Equal(t, 1, cli.ExitCode(errors.Join(errors.New("wrapped"), cli.ErrThresholdExceeded)))
	assert.Equal(t, 2, cli.ExitCode(errors.New("boom")))
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dbtguard")
}

func TestRulesCmd(t *testing.T) {
	out, err := run(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "ownership")
	assert.Contains(t, out, "test-coverage")
	assert.Contains(t, out, "lineage")
}

func TestValidateCmd_ThresholdExceeded(t *testing.T) {
	// The fixture's orders model has no owner, which is an error under the
	// project's governance.yaml.
	out, err := run(t, "validate", fixturePath(t), "--offline")
	require.Error(t, err)
	assert.ErrorIs(t, err, cli.ErrThresholdExceeded)
	assert.Equal(t, 1, cli.ExitCode(err))
	assert.Contains(t, out, "orders")
}

func TestValidateCmd_FailOnNever(t *testing.T) {
	_, err := run(t, "validate", fixturePath(t), "--offline", "--fail-on", "never")
	require.NoError(t, err)
}

func TestValidateCmd_JSONToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.json")
	_, err := run(t, "validate", fixturePath(t), "--offline",
		"--fail-on", "never", "--format", "json", "--output", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"decision"`)
	assert.Contains(t, string(data), "stg_customers")
}

func TestValidateCmd_MissingManifest(t *testing.T) {
	_, err := run(t, "validate", t.TempDir(), "--offline")
	require.Error(t, err)
	assert.Equal(t, 2, cli.ExitCode(err))
}

func TestValidateCmd_UnknownFormat(t *testing.T) {
	_, err := run(t, "validate", fixturePath(t), "--offline", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, 2, cli.ExitCode(err))
}

func TestValidateCmd_InvalidFailOn(t *testing.T) {
	_, err := run(t, "validate", fixturePath(t), "--offline", "--fail-on", "sometimes")
	require.Error(t, err)
	assert.Equal(t, 2, cli.ExitCode(err))
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "governance.yaml")

	data, err := os.ReadFile(filepath.Join(dir, "governance.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "require_description")

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := run(t, "init", dir)
		require.ErrorContains(t, err, "already exists")
	})

	t.Run("force overwrites with full example", func(t *testing.T) {
		_, err := run(t, "init", dir, "--force", "--full")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "governance.yaml"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "lineage_consistency")
	})
}

func TestIngestCmd_RequiresServer(t *testing.T) {
	t.Setenv("DATAHUB_SERVER", "")
	_, err := run(t, "ingest", t.TempDir())
	require.ErrorContains(t, err, "requires a catalog server")
	assert.Equal(t, 2, cli.ExitCode(err))
}
