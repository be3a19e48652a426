package surface

import (
	"fmt"
	"io"
	"os"

	"github.com/psyscore/psyscore/pkg/assessment"
	"github.com/psyscore/psyscore/pkg/features"
	"github.com/psyscore/psyscore/pkg/scoring"
)

// TerminalRenderer renders a Report as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func severityColor(res *scoring.ScoreResult) string {
	if noColor() {
		return ""
	}
	switch {
	case res.Severity == scoring.InvalidScore:
		return colorYellow
	case res.Screen != nil && res.Screen.Positive:
		return colorRed
	case res.Screen != nil:
		return colorGreen
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, report *assessment.Report) error {
	// Header
	fmt.Fprintf(w, "%s\n", bold(fmt.Sprintf("psyscore: %d instrument(s) scored", len(report.Results))))
	if report.SubmissionID != "" {
		fmt.Fprintf(w, "%s\n", dim("submission "+report.SubmissionID+"  report "+report.ID))
	}
	fmt.Fprintln(w)

	if len(report.Results) == 0 {
		fmt.Fprintln(w, "No instruments.")
		fmt.Fprintln(w)
	}

	for _, res := range report.Results {
		fmt.Fprintf(w, "  %s  score %d  %s\n",
			bold(res.Instrument), res.Score, colored(res.Severity, severityColor(res)))

		for _, name := range res.SubscaleOrder {
			fmt.Fprintf(w, "      %s %-3d %s\n", dim(name), res.Subscales[name], res.SubscaleSeverities[name])
		}

		if res.Screen != nil {
			for _, c := range res.Screen.Criteria {
				mark := colored("✗", colorRed)
				if c.Met {
					mark = colored("✓", colorGreen)
				}
				fmt.Fprintf(w, "      %s %s %s\n", mark, c.Name, dim(fmt.Sprintf("%d/%d", c.Count, c.Required)))
			}
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Feature vector: %d of %d slots populated\n", nonZeroSlots(report), features.Length)
	return nil
}
