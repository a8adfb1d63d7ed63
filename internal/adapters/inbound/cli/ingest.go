package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/dbtguard/internal/adapters/outbound/datahub"
	"github.com/abdidvp/dbtguard/internal/application"
)

func newIngestCmd() *cobra.Command {
	var (
		manifestPath string
		configPath   string
		server       string
		token        string
	)

	cmd := &cobra.Command{
		Use:   "ingest [project-path]",
		Short: "Register dbt models as datasets in the catalog",
		Long:  "Map every model and source in the manifest to its dataset URN and emit the metadata (ownership, columns, properties) to the DataHub server.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectPath := "."
			if len(args) > 0 {
				projectPath = args[0]
			}
			absPath, err := filepath.Abs(projectPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := loadConfig(absPath, configPath)
			if err != nil {
				return err
			}
			applyOverrides(&cfg, "", "", "", server, token)
			if cfg.Catalog.Server == "" {
				return fmt.Errorf("ingest requires a catalog server (--server or DATAHUB_SERVER)")
			}

			artifact, err := os.ReadFile(resolveManifest(absPath, manifestPath))
			if err != nil {
				return fmt.Errorf("reading manifest: %w", err)
			}

			client := datahub.NewClient(cfg.Catalog)
			if err := client.HealthCheck(cmd.Context()); err != nil {
				return fmt.Errorf("catalog unreachable: %w", err)
			}

			svc := application.NewIngestService(client)
			count, err := svc.Ingest(cmd.Context(), artifact, cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %d dataset(s) with %s\n", count, cfg.Catalog.Server)
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Path to manifest.json (default <project>/target/manifest.json)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to governance config (default <project>/governance.yaml)")
	cmd.Flags().StringVar(&server, "server", "", "DataHub server URL (or DATAHUB_SERVER)")
	cmd.Flags().StringVar(&token, "token", "", "DataHub access token (or DATAHUB_TOKEN)")

	return cmd
}
