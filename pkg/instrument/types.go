// Package instrument defines the catalog of standardized screening questionnaires
// and the declarative scoring configuration attached to each one.
// Instruments are immutable once the catalog is loaded.
package instrument

import "slices"

// Instrument is a single standardized screening questionnaire.
type Instrument struct {
	ID          string        `yaml:"id" json:"id"`                                       // canonical id: "Depression Secondary"
	ShortName   string        `yaml:"short_name" json:"short_name"`                       // "PHQ-9"
	Description string        `yaml:"description,omitempty" json:"description,omitempty"` // "Patient Health Questionnaire"
	Aliases     []string      `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Offset      int           `yaml:"offset" json:"offset"` // first feature-vector slot
	Questions   []Question    `yaml:"questions" json:"questions"`
	Scoring     ScoringConfig `yaml:"scoring" json:"scoring"`
}

// QuestionCount returns the number of questions, which is also the number of
// feature-vector slots the instrument occupies.
func (in *Instrument) QuestionCount() int {
	return len(in.Questions)
}

// clone returns a copy that shares no slices or pointers with in.
func (in Instrument) clone() Instrument {
	out := in
	out.Aliases = slices.Clone(in.Aliases)
	out.Questions = make([]Question, len(in.Questions))
	for i, q := range in.Questions {
		out.Questions[i] = Question{Prompt: q.Prompt, Options: slices.Clone(q.Options)}
	}
	out.Scoring = in.Scoring.clone()
	return out
}

// Question is one item of an instrument. Its position in Instrument.Questions
// determines which raw answer it reads.
type Question struct {
	Prompt  string   `yaml:"prompt" json:"prompt"`
	Options []Option `yaml:"options" json:"options"`
}

// Option is one selectable answer. Scoring reads Value, not the option's position.
type Option struct {
	Label string `yaml:"label" json:"label"`
	Value int    `yaml:"value" json:"value"`
}

// HasValue reports whether v is one of the question's declared option values.
func (q Question) HasValue(v int) bool {
	for _, o := range q.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// valueRange returns the smallest and largest declared option values.
func (q Question) valueRange() (lo, hi int) {
	for i, o := range q.Options {
		if i == 0 || o.Value < lo {
			lo = o.Value
		}
		if i == 0 || o.Value > hi {
			hi = o.Value
		}
	}
	return lo, hi
}

// RuleKind selects the scoring strategy for an instrument.
type RuleKind string

const (
	RuleSimpleSum      RuleKind = "SIMPLE_SUM"
	RuleSubscaleSum    RuleKind = "SUBSCALE_SUM"
	RuleCriteriaScreen RuleKind = "CRITERIA_SCREEN"
)

// Valid reports whether r is a known rule kind.
func (r RuleKind) Valid() bool {
	switch r {
	case RuleSimpleSum, RuleSubscaleSum, RuleCriteriaScreen:
		return true
	}
	return false
}

// ScoringConfig is the declarative scoring rule of an instrument.
// Exactly one of Subscales or Screen is set when Rule requires it.
type ScoringConfig struct {
	Rule           RuleKind        `yaml:"rule" json:"rule"`
	SeverityLevels []SeverityLevel `yaml:"severity_levels,omitempty" json:"severity_levels,omitempty"`
	Subscales      *SubscaleConfig `yaml:"subscales,omitempty" json:"subscales,omitempty"`
	Screen         *ScreenConfig   `yaml:"screen,omitempty" json:"screen,omitempty"`
}

func (c ScoringConfig) clone() ScoringConfig {
	out := c
	out.SeverityLevels = slices.Clone(c.SeverityLevels)
	if c.Subscales != nil {
		sub := *c.Subscales
		sub.Groups = make([]Subscale, len(c.Subscales.Groups))
		for i, g := range c.Subscales.Groups {
			g.SeverityLevels = slices.Clone(g.SeverityLevels)
			sub.Groups[i] = g
		}
		out.Subscales = &sub
	}
	if c.Screen != nil {
		scr := *c.Screen
		scr.Criteria = make([]Criterion, len(c.Screen.Criteria))
		for i, cr := range c.Screen.Criteria {
			cr.Cutoffs = slices.Clone(cr.Cutoffs)
			scr.Criteria[i] = cr
		}
		out.Screen = &scr
	}
	return out
}

// SeverityLevel maps an inclusive score range [Low, High] to a label.
type SeverityLevel struct {
	Label string `yaml:"label" json:"label"`
	Low   int    `yaml:"low" json:"low"`
	High  int    `yaml:"high" json:"high"`
}

// Contains reports whether score falls inside the inclusive range.
func (l SeverityLevel) Contains(score int) bool {
	return score >= l.Low && score <= l.High
}

// Span is a half-open range [Start, End) of question positions.
type Span struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// Len returns the number of questions covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// SubscaleConfig partitions the questions into named contiguous groups.
type SubscaleConfig struct {
	Groups []Subscale `yaml:"groups" json:"groups"`
	// Aggregate names the group whose sum becomes the overall score.
	// Empty means the sum of every group.
	Aggregate string `yaml:"aggregate,omitempty" json:"aggregate,omitempty"`
	// Separator joins the per-group "<Name>: <Label>" fragments. Defaults to ", ".
	Separator string `yaml:"separator,omitempty" json:"separator,omitempty"`
}

// JoinSeparator returns the configured separator or the default ", ".
func (c *SubscaleConfig) JoinSeparator() string {
	if c.Separator == "" {
		return ", "
	}
	return c.Separator
}

// Subscale is one named group of a SUBSCALE_SUM instrument.
type Subscale struct {
	Name           string          `yaml:"name" json:"name"`
	Span           Span            `yaml:"span" json:"span"`
	SeverityLevels []SeverityLevel `yaml:"severity_levels" json:"severity_levels"`
}

// ScreenReport selects what a CRITERIA_SCREEN instrument reports as its score.
type ScreenReport string

const (
	// ScreenReportBinary reports 1 for a positive screen and 0 otherwise.
	ScreenReportBinary ScreenReport = "binary"
	// ScreenReportSum reports the raw answer sum; a negative screen is labelled
	// from the severity ranges.
	ScreenReportSum ScreenReport = "sum"
)

// ScreenConfig is a compound pass/fail rule: every criterion must pass.
type ScreenConfig struct {
	Criteria      []Criterion  `yaml:"criteria" json:"criteria"`
	PositiveLabel string       `yaml:"positive_label" json:"positive_label"`
	NegativeLabel string       `yaml:"negative_label" json:"negative_label"`
	Report        ScreenReport `yaml:"report,omitempty" json:"report,omitempty"`
}

// ReportsSum reports whether the screen scores as a raw sum.
func (c *ScreenConfig) ReportsSum() bool {
	return c.Report == ScreenReportSum
}

// Comparison is how a criterion tests a single answer.
type Comparison string

const (
	CompareEqual   Comparison = "eq"
	CompareAtLeast Comparison = "gte"
)

// Criterion passes when at least MinCount answers inside Span satisfy the comparison.
// Cutoffs, when set, overrides Value per question (indexed from Span.Start).
type Criterion struct {
	Name     string     `yaml:"name" json:"name"`
	Span     Span       `yaml:"span" json:"span"`
	Compare  Comparison `yaml:"compare" json:"compare"`
	Value    int        `yaml:"value" json:"value"`
	Cutoffs  []int      `yaml:"cutoffs,omitempty" json:"cutoffs,omitempty"`
	MinCount int        `yaml:"min_count" json:"min_count"`
}

// Cutoff returns the comparison value for the i-th question of the span.
func (c Criterion) Cutoff(i int) int {
	if len(c.Cutoffs) > 0 {
		return c.Cutoffs[i]
	}
	return c.Value
}

// Satisfied reports whether a single answer meets the criterion's comparison.
func (c Criterion) Satisfied(i, answer int) bool {
	cut := c.Cutoff(i)
	if c.Compare == CompareEqual {
		return answer == cut
	}
	return answer >= cut
}
