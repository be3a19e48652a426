package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/psyscore/psyscore/pkg/assessment"
	"github.com/psyscore/psyscore/pkg/features"
	"github.com/psyscore/psyscore/pkg/scoring"
)

// MarkdownRenderer produces a Markdown summary suitable for a clinician-facing note.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, report *assessment.Report) error {
	_, err := io.WriteString(w, buildMarkdownSummary(report))
	return err
}

func buildMarkdownSummary(report *assessment.Report) string {
	var sb strings.Builder

	sb.WriteString("## Pre-assessment results\n\n")
	if report.SubmissionID != "" {
		sb.WriteString(fmt.Sprintf("_Submission %s, scored %s_\n\n", report.SubmissionID, report.ScoredAt.Format("2006-01-02 15:04 MST")))
	}

	sb.WriteString("| Instrument | Score | Severity |\n|------------|-------|----------|\n")
	for _, res := range report.Results {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n",
			escapeCell(res.Instrument), res.Score, severityCell(res)))
	}
	sb.WriteString("\n")

	// Subscale and criteria detail
	for _, res := range report.Results {
		if len(res.SubscaleOrder) == 0 && res.Screen == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", res.Instrument))
		for _, name := range res.SubscaleOrder {
			sb.WriteString(fmt.Sprintf("- **%s**: %d (%s)\n", name, res.Subscales[name], res.SubscaleSeverities[name]))
		}
		if res.Screen != nil {
			for _, c := range res.Screen.Criteria {
				box := "[ ]"
				if c.Met {
					box = "[x]"
				}
				sb.WriteString(fmt.Sprintf("- %s %s (%d of %d required)\n", box, c.Name, c.Count, c.Required))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("<sub>Feature vector: %d/%d slots populated</sub>\n", nonZeroSlots(report), features.Length))
	return sb.String()
}

func screenIcon(res *scoring.ScoreResult) string {
	switch {
	case res.Severity == scoring.InvalidScore:
		return "⚠️"
	case res.Screen != nil && res.Screen.Positive:
		return "🔴"
	default:
		return ""
	}
}

func severityCell(res *scoring.ScoreResult) string {
	cell := escapeCell(res.Severity)
	if icon := screenIcon(res); icon != "" {
		cell = icon + " " + cell
	}
	return cell
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
