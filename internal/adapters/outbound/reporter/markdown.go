package reporter

import (
	"fmt"
	"strings"

	"github.com/abdidvp/dbtguard/internal/domain"
)

func severityIcon(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return "❌"
	case domain.SeverityWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// Markdown renders a documentation-style report.
func Markdown(result *domain.ValidationResult) (string, error) {
	var b strings.Builder

	b.WriteString("# Data Governance Report\n\n")
	b.WriteString(fmt.Sprintf("**Generated:** %s\n\n", result.GeneratedAt.Format("2006-01-02 15:04:05")))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Decision | %s |\n", strings.ToUpper(string(result.Decision))))
	b.WriteString(fmt.Sprintf("| Total Models | %d |\n", result.TotalModels))
	b.WriteString(fmt.Sprintf("| Passed | %d |\n", result.PassedModels))
	b.WriteString(fmt.Sprintf("| Failed | %d |\n", result.FailedModels))
	b.WriteString(fmt.Sprintf("| Total Violations | %d |\n", result.TotalViolations))
	b.WriteString(fmt.Sprintf("| Errors | %d |\n", result.ErrorCount))
	b.WriteString(fmt.Sprintf("| Warnings | %d |\n", result.WarningCount))
	b.WriteString(fmt.Sprintf("| Info | %d |\n\n", result.InfoCount))

	if len(result.Violations) > 0 {
		b.WriteString("## Violations\n\n")
		b.WriteString("| Model | Severity | Rule | Message |\n|-------|----------|------|--------|\n")
		names, grouped := violationsByModel(result)
		for _, name := range names {
			for _, v := range grouped[name] {
				b.WriteString(fmt.Sprintf("| %s | %s %s | %s | %s |\n",
					name, severityIcon(v.Severity), strings.ToUpper(string(v.Severity)),
					v.RuleName, v.Message))
			}
		}
		b.WriteString("\n")
	}

	if passed := passedModels(result); len(passed) > 0 {
		b.WriteString("## Passed Models\n\nModels with no governance violations:\n\n")
		for _, name := range passed {
			b.WriteString(fmt.Sprintf("- %s\n", name))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}
