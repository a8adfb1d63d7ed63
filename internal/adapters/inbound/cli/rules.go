package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/dbtguard/internal/domain"
)

var ruleTypeSummaries = map[domain.RuleType]string{
	domain.RuleOwnership:     "Models must have owners, optionally of required ownership types",
	domain.RuleDocumentation: "Models (and optionally columns) must carry descriptions of a minimum length",
	domain.RuleTag:           "Required tags must be present, forbidden tags absent",
	domain.RuleColumn:        "Required columns, naming conventions and schema drift against the catalog",
	domain.RuleLineage:       "Declared dependencies must match the catalog's upstream lineage",
	domain.RuleTestCoverage:  "Models must be covered by a minimum number of dbt tests",
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the available governance rule types",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range domain.ValidRuleTypes {
				fmt.Fprintf(cmd.OutOrStdout(), "%-15s %s\n", t, ruleTypeSummaries[t])
			}
			return nil
		},
	}
}
