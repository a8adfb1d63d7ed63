package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// ErrThresholdExceeded marks a run where the manifest parsed and the rules
// evaluated, but the findings crossed the configured fail-on threshold. It is
// the only error that maps to exit code 1; everything else is exit code 2.
var ErrThresholdExceeded = errors.New("governance threshold exceeded")

// ExitCode translates an error returned by Execute into a process exit code:
// 0 for success, 1 for a failed governance decision, 2 for configuration or
// runtime errors.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrThresholdExceeded):
		return 1
	default:
		return 2
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dbtguard",
		Short: "Governance checks for dbt projects",
		Long:  "dbtguard validates dbt manifest artifacts against governance rules, enriched with ownership, documentation, tag and lineage context from a DataHub-compatible catalog.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Best effort: a missing .env is not an error.
			_ = godotenv.Load()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
