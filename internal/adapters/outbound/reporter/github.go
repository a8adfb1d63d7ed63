package reporter

import (
	"fmt"
	"strings"

	"github.com/abdidvp/dbtguard/internal/domain"
)

// GitHub renders a PR-comment flavored report: status headline, collapsible
// violation table, passed-model list.
func GitHub(result *domain.ValidationResult) (string, error) {
	var b strings.Builder

	icon, status := "✅", "All checks passed"
	switch {
	case result.ErrorCount > 0:
		icon, status = "❌", "Governance checks failed"
	case result.TotalViolations > 0:
		icon, status = "⚠️", "Governance checks passed with warnings"
	}

	b.WriteString(fmt.Sprintf("## Data Governance Check Results %s\n\n", icon))
	b.WriteString(fmt.Sprintf("**Status:** %s\n\n", status))
	b.WriteString("### Summary\n\n")
	b.WriteString(fmt.Sprintf("- **Total Models:** %d\n", result.TotalModels))
	b.WriteString(fmt.Sprintf("- **Passed:** %d\n", result.PassedModels))
	b.WriteString(fmt.Sprintf("- **Failed:** %d\n", result.FailedModels))
	b.WriteString(fmt.Sprintf("- **Errors:** %d 🔴\n", result.ErrorCount))
	b.WriteString(fmt.Sprintf("- **Warnings:** %d 🟡\n", result.WarningCount))
	b.WriteString(fmt.Sprintf("- **Info:** %d 🟢\n\n", result.InfoCount))

	if len(result.Violations) > 0 {
		b.WriteString("### Violations\n\n<details>\n<summary>View details</summary>\n\n")
		b.WriteString("| Model | Severity | Rule | Message |\n|-------|----------|------|--------|\n")
		names, grouped := violationsByModel(result)
		for _, name := range names {
			for _, v := range grouped[name] {
				b.WriteString(fmt.Sprintf("| `%s` | %s %s | `%s` | %s |\n",
					name, severityIcon(v.Severity), strings.ToUpper(string(v.Severity)),
					v.RuleName, v.Message))
			}
		}
		b.WriteString("\n</details>\n\n")
	}

	if passed := passedModels(result); len(passed) > 0 {
		b.WriteString("### Passed Models\n\n✅ The following models have no governance violations:\n\n")
		for _, name := range passed {
			b.WriteString(fmt.Sprintf("- `%s`\n", name))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("---\n*Report generated at %s*\n",
		result.GeneratedAt.Format("2006-01-02 15:04:05")))
	return b.String(), nil
}
