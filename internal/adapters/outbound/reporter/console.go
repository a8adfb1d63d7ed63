package reporter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/dbtguard/internal/domain"
)

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
	info    = lipgloss.Color("#8B949E")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	modelStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	passStyle     = lipgloss.NewStyle().Foreground(success).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(danger).Bold(true)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	separatorLine = lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("─", 64))
)

func severityTag(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return errorTagStyle.Render("✗ ERROR")
	case domain.SeverityWarning:
		return warnTagStyle.Render("⚠ WARN ")
	default:
		return infoTagStyle.Render("ℹ INFO ")
	}
}

// Console renders a styled terminal report.
func Console(result *domain.ValidationResult) (string, error) {
	var b strings.Builder

	b.WriteString("\n" + titleStyle.Render("Data Governance Report") + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("run %s · platform %s · env %s",
		result.RunID, result.Platform, result.Environment)) + "\n")
	if result.CommitHash != "" {
		b.WriteString(dimStyle.Render("commit "+result.CommitHash) + "\n")
	}
	b.WriteString(separatorLine + "\n")

	b.WriteString(fmt.Sprintf("  models    %d total · %s · %s\n",
		result.TotalModels,
		passStyle.Render(fmt.Sprintf("%d passed", result.PassedModels)),
		failStyle.Render(fmt.Sprintf("%d failed", result.FailedModels)),
	))
	b.WriteString(fmt.Sprintf("  findings  %s · %s · %s\n",
		errorTagStyle.Render(fmt.Sprintf("%d errors", result.ErrorCount)),
		warnTagStyle.Render(fmt.Sprintf("%d warnings", result.WarningCount)),
		infoTagStyle.Render(fmt.Sprintf("%d info", result.InfoCount)),
	))

	if len(result.Violations) > 0 {
		b.WriteString(separatorLine + "\n")
		names, grouped := violationsByModel(result)
		for _, name := range names {
			b.WriteString("\n  " + modelStyle.Render(name) + "\n")
			for _, v := range grouped[name] {
				b.WriteString(fmt.Sprintf("    %s  %s %s\n",
					severityTag(v.Severity),
					v.Message,
					dimStyle.Render("("+v.RuleName+")"),
				))
			}
		}
	}

	b.WriteString("\n" + separatorLine + "\n")
	decision := passStyle.Render("PASS")
	if result.Decision == domain.DecisionFail {
		decision = failStyle.Render("FAIL")
	}
	b.WriteString(fmt.Sprintf("  %s %s\n", decision,
		dimStyle.Render(fmt.Sprintf("(fail-on: %s, %.2fs)", result.FailOn, result.DurationSeconds))))
	return b.String(), nil
}
