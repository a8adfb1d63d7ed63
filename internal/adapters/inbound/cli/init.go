package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	configAdapter "github.com/abdidvp/dbtguard/internal/adapters/outbound/config"
)

func newInitCmd() *cobra.Command {
	var (
		full  bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [project-path]",
		Short: "Generate a governance.yaml configuration file",
		Long:  "Create a governance.yaml with a starter rule set. Use --full for an example that exercises every rule type and the catalog settings.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, defaultConfigFile)
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", defaultConfigFile)
				}
			}

			variant := "basic"
			if full {
				variant = "full"
			}
			data, err := configAdapter.RenderExample(variant)
			if err != nil {
				return err
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", defaultConfigFile, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", dest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Generate the full example with every rule type")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing governance.yaml")

	return cmd
}
