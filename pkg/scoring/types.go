// Package scoring computes raw scores and severity labels for answers to a
// catalog instrument. Each instrument's rule kind selects one of three
// strategies: a plain sum, per-subscale sums, or a compound screening rule.
package scoring

// Unanswered marks a question with no selected option. It contributes 0 to
// sums and never satisfies a screening criterion.
const Unanswered = -1

// ScoreResult is the output of scoring one instrument.
// Immutable once computed.
type ScoreResult struct {
	Instrument string         `json:"instrument"`
	Score      int            `json:"score"`
	Severity   string         `json:"severity"`
	Subscales  map[string]int `json:"subscales,omitempty"`
	// SubscaleSeverities holds the per-group label for SUBSCALE_SUM instruments.
	SubscaleSeverities map[string]string `json:"subscale_severities,omitempty"`
	SubscaleOrder      []string          `json:"subscale_order,omitempty"` // group names in declaration order
	Screen             *ScreenOutcome    `json:"screen,omitempty"`
	Answered           int               `json:"answered"` // questions with a non-sentinel answer
}

// ScreenOutcome explains a CRITERIA_SCREEN result criterion by criterion.
type ScreenOutcome struct {
	Positive bool              `json:"positive"`
	Criteria []CriterionResult `json:"criteria"`
}

// CriterionResult is the evaluation of a single screening criterion.
type CriterionResult struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`    // answers in the span that satisfied the comparison
	Required int    `json:"required"` // MinCount
	Met      bool   `json:"met"`
}
