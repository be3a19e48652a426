package surface_test

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/psyscore/psyscore/pkg/assessment"
	"github.com/psyscore/psyscore/pkg/scoring"
	"github.com/psyscore/psyscore/pkg/surface"
)

func sampleReport() *assessment.Report {
	r := &assessment.Report{
		ID:           "rep-1",
		SubmissionID: "sub-1",
		Instruments:  []string{"Depression Secondary", "Burnout", "Bipolar disorder (BD)"},
		Results: []*scoring.ScoreResult{
			{Instrument: "Depression Secondary", Score: 13, Severity: "Moderate", Answered: 9},
			{
				Instrument:         "Burnout",
				Score:              48,
				Severity:           "EE: Low, DP: Low, PA: High Accomplishment",
				Subscales:          map[string]int{"EE": 0, "DP": 0, "PA": 48},
				SubscaleSeverities: map[string]string{"EE": "Low", "DP": "Low", "PA": "High Accomplishment"},
				SubscaleOrder:      []string{"EE", "DP", "PA"},
				Answered:           22,
			},
			{
				Instrument: "Bipolar disorder (BD)",
				Score:      1,
				Severity:   "Positive Bipolar Screen (All 3 Criteria Met)",
				Screen: &scoring.ScreenOutcome{
					Positive: true,
					Criteria: []scoring.CriterionResult{
						{Name: "symptoms", Count: 7, Required: 7, Met: true},
						{Name: "clustering", Count: 1, Required: 1, Met: true},
						{Name: "impairment", Count: 1, Required: 1, Met: true},
					},
				},
				Answered: 15,
			},
		},
		ScoredAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	copy(r.Vector[165:], []int{1, 2, 3, 0, 1, 2, 3, 0, 1})
	return r
}

func TestTerminalRenderer_BasicOutput(t *testing.T) {
	// Set NO_COLOR to avoid ANSI codes in test comparison
	t.Setenv("NO_COLOR", "1")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"3 instrument(s) scored",
		"submission sub-1",
		"Depression Secondary  score 13  Moderate",
		"EE: Low, DP: Low, PA: High Accomplishment",
		"PA 48  High Accomplishment",
		"✓ symptoms 7/7",
		"Feature vector: 7 of 201 slots populated",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\033[") {
		t.Error("expected no ANSI escape codes with NO_COLOR set")
	}
	if strings.Index(output, "EE 0") > strings.Index(output, "DP 0") {
		t.Error("expected subscales in declaration order")
	}
}

func TestTerminalRenderer_Empty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	if err := (&surface.TerminalRenderer{}).Render(&buf, &assessment.Report{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "No instruments") {
		t.Error("expected 'No instruments' message")
	}
}

func TestTerminalRenderer_ColorRespected(t *testing.T) {
	// Without NO_COLOR, output should have ANSI codes.
	// t.Setenv restores the original value after the test.
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")

	var buf bytes.Buffer
	if err := (&surface.TerminalRenderer{}).Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[31m") {
		t.Error("expected red positive screen when NO_COLOR is not set")
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.JSONRenderer{}).Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	var got assessment.Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a report: %v", err)
	}
	if got.Severities()["Burnout"] != "EE: Low, DP: Low, PA: High Accomplishment" {
		t.Errorf("unexpected burnout severity %q", got.Severities()["Burnout"])
	}
	if got.Vector[165] != 1 {
		t.Errorf("expected vector slot 165 = 1, got %d", got.Vector[165])
	}
}

func TestMarkdownRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.MarkdownRenderer{}).Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"| Depression Secondary | 13 | Moderate |",
		"| Bipolar disorder (BD) | 1 | 🔴 Positive Bipolar Screen (All 3 Criteria Met) |",
		"### Burnout",
		"- **PA**: 48 (High Accomplishment)",
		"- [x] symptoms (7 of 7 required)",
		"_Submission sub-1, scored 2025-03-14 09:30 UTC_",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "|  ") {
		t.Errorf("table cell has a doubled space:\n%s", output)
	}
	if strings.Contains(output, "### Depression Secondary") {
		t.Error("plain-sum instruments should not get a detail section")
	}
}

func TestForFormat(t *testing.T) {
	for _, f := range []string{"", "text", "json", "markdown", "md"} {
		if _, err := surface.ForFormat(f); err != nil {
			t.Errorf("ForFormat(%q): %v", f, err)
		}
	}
	if _, err := surface.ForFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
