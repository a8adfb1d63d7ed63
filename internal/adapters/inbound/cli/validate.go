package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	configAdapter "github.com/abdidvp/dbtguard/internal/adapters/outbound/config"
	"github.com/abdidvp/dbtguard/internal/adapters/outbound/datahub"
	"github.com/abdidvp/dbtguard/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/dbtguard/internal/adapters/outbound/reporter"
	"github.com/abdidvp/dbtguard/internal/application"
	"github.com/abdidvp/dbtguard/internal/domain"
)

const defaultConfigFile = "governance.yaml"

func newValidateCmd() *cobra.Command {
	var (
		manifestPath string
		configPath   string
		platform     string
		environment  string
		failOn       string
		format       string
		outputPath   string
		server       string
		token        string
		offline      bool
	)

	cmd := &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a dbt manifest against governance rules",
		Long:  "Parse a dbt manifest.json, fetch governance context from the catalog, evaluate the configured rules and report violations. Exits 1 when findings cross the fail-on threshold, 2 on configuration or runtime errors.",
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
			applyOverrides(&cfg, platform, environment, failOn, server, token)
			if offline {
				cfg.Catalog.Server = ""
			}

			render, err := reporter.Get(format)
			if err != nil {
				return err
			}

			artifact, err := os.ReadFile(resolveManifest(absPath, manifestPath))
			if err != nil {
				return fmt.Errorf("reading manifest: %w", err)
			}

			svc := application.NewValidateService(newFetcher(cfg), gitinfo.New())
			result, err := svc.Run(cmd.Context(), artifact, cfg, absPath)
			if err != nil {
				return err
			}

			out, err := render(result)
			if err != nil {
				return fmt.Errorf("rendering report: %w", err)
			}
			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}

			if result.Decision == domain.DecisionFail {
				return fmt.Errorf("%w: %d error(s), %d warning(s) at fail-on=%s",
					ErrThresholdExceeded, result.ErrorCount, result.WarningCount, result.FailOn)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Path to manifest.json (default <project>/target/manifest.json)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to governance config (default <project>/governance.yaml)")
	cmd.Flags().StringVar(&platform, "platform", "", "Data platform override (e.g. snowflake, bigquery)")
	cmd.Flags().StringVar(&environment, "env", "", "Catalog environment override (default PROD)")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Severity threshold: error, warning or never")
	cmd.Flags().StringVarP(&format, "format", "f", "console", "Report format: console, json, markdown or github")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&server, "server", "", "DataHub server URL (or DATAHUB_SERVER)")
	cmd.Flags().StringVar(&token, "token", "", "DataHub access token (or DATAHUB_TOKEN)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip catalog lookups; treat every dataset as unregistered")

	return cmd
}

// loadConfig resolves the governance config for a run: an explicit --config
// path must exist, the conventional governance.yaml is picked up when present,
// and otherwise the built-in default rule set applies.
func loadConfig(projectPath, configPath string) (domain.GovernanceConfig, error) {
	loader := configAdapter.New()
	if configPath != "" {
		return loader.Load(configPath)
	}
	candidate := filepath.Join(projectPath, defaultConfigFile)
	if _, err := os.Stat(candidate); err == nil {
		return loader.Load(candidate)
	}
	return domain.DefaultConfig(), nil
}

func applyOverrides(cfg *domain.GovernanceConfig, platform, environment, failOn, server, token string) {
	if platform != "" {
		cfg.Platform = platform
	}
	if environment != "" {
		cfg.Environment = environment
	}
	if failOn != "" {
		cfg.FailOn = domain.FailOn(failOn)
	}
	if server != "" {
		cfg.Catalog.Server = server
	}
	if token != "" {
		cfg.Catalog.Token = token
	}
	if cfg.Catalog.Server == "" {
		cfg.Catalog.Server = os.Getenv("DATAHUB_SERVER")
	}
	if cfg.Catalog.Token == "" {
		cfg.Catalog.Token = os.Getenv("DATAHUB_TOKEN")
	}
}

func resolveManifest(projectPath, manifestPath string) string {
	if manifestPath != "" {
		return manifestPath
	}
	return filepath.Join(projectPath, "target", "manifest.json")
}

// newFetcher picks the catalog transport: the HTTP client when a server is
// configured, otherwise the offline fetcher that reports every dataset as
// not registered.
func newFetcher(cfg domain.GovernanceConfig) domain.ContextFetcher {
	if cfg.Catalog.Server == "" {
		return datahub.Offline{}
	}
	return datahub.NewFetcher(datahub.NewClient(cfg.Catalog))
}
