package gitinfo_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/dbtguard/internal/adapters/outbound/gitinfo"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, string(out))
}

func TestIsGitRepo(t *testing.T) {
	t.Run("initialized repo", func(t *testing.T) {
		dir := t.TempDir()
		runGit(t, dir, "init")
		assert.True(t, gitinfo.New().IsGitRepo(dir))
	})

	t.Run("plain directory", func(t *testing.T) {
		assert.False(t, gitinfo.New().IsGitRepo(t.TempDir()))
	})
}

func TestCommitHash(t *testing.T) {
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test")

	// A dbt project actually has a dbt_project.yml at its root, commit one.
	f := filepath.Join(dir, "dbt_project.yml")
	require.NoError(t, os.WriteFile(f, []byte("name: jaffle_shop\n"), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "init")

	hash, err := gitinfo.New().CommitHash(dir)
	require.NoError(t, err)
	assert.Len(t, hash, 40, "full SHA-1 hash")
}

func TestCommitHash_NotARepo(t *testing.T) {
	_, err := gitinfo.New().CommitHash(t.TempDir())
	assert.Error(t, err)
}
