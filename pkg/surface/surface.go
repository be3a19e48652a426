// Package surface defines output rendering for psyscore reports.
// Implementations handle different output targets: terminal, Markdown, JSON.
package surface

import (
	"fmt"
	"io"

	"github.com/psyscore/psyscore/pkg/assessment"
)

// Renderer produces formatted output from a Report.
type Renderer interface {
	// Render writes the formatted report to the writer.
	Render(w io.Writer, report *assessment.Report) error
}

// ForFormat returns the renderer for an output format name.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "", "text":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want text, json, or markdown)", format)
}

// nonZeroSlots counts populated feature-vector positions.
func nonZeroSlots(r *assessment.Report) int {
	n := 0
	for _, v := range r.Vector {
		if v != 0 {
			n++
		}
	}
	return n
}
