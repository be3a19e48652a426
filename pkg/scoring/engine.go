package scoring

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/psyscore/psyscore/pkg/instrument"
)

// Calculator scores answers against a catalog, dispatching on each instrument's
// rule kind. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	catalog *instrument.Catalog
	rules   map[instrument.RuleKind]Rule
	policy  LengthPolicy
	log     *zap.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLengthPolicy sets how answer-count mismatches are handled.
func WithLengthPolicy(p LengthPolicy) Option {
	return func(c *Calculator) { c.policy = p }
}

// WithLogger sets the logger used to report tolerated mismatches.
func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRules replaces the strategy for each given rule kind.
func WithRules(rules ...Rule) Option {
	return func(c *Calculator) {
		for _, r := range rules {
			c.rules[r.Kind()] = r
		}
	}
}

// NewCalculator creates a calculator over a validated catalog.
func NewCalculator(catalog *instrument.Catalog, opts ...Option) *Calculator {
	c := &Calculator{
		catalog: catalog,
		rules:   make(map[instrument.RuleKind]Rule),
		policy:  LengthTolerant,
		log:     zap.NewNop(),
	}
	for _, r := range DefaultRules() {
		c.rules[r.Kind()] = r
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the catalog the calculator scores against.
func (c *Calculator) Catalog() *instrument.Catalog { return c.catalog }

// Policy returns the configured length policy.
func (c *Calculator) Policy() LengthPolicy { return c.policy }

// Compute scores answers for the instrument with the given id or alias.
// Unknown ids return an error matching instrument.ErrNotFound.
func (c *Calculator) Compute(id string, answers []int) (*ScoreResult, error) {
	in, err := c.catalog.Get(id)
	if err != nil {
		return nil, fmt.Errorf("computing score: %w", err)
	}
	return c.ComputeInstrument(in, answers)
}

// ComputeInstrument scores answers for an instrument already resolved from the catalog.
func (c *Calculator) ComputeInstrument(in *instrument.Instrument, answers []int) (*ScoreResult, error) {
	rule, ok := c.rules[in.Scoring.Rule]
	if !ok {
		return nil, fmt.Errorf("%s: no scoring rule for kind %q", in.ID, in.Scoring.Rule)
	}

	conformed, err := c.conform(in, answers)
	if err != nil {
		return nil, err
	}

	result := rule.Evaluate(in, conformed)
	result.Instrument = in.ID
	result.Answered = answered(conformed)
	return &result, nil
}

// conform returns exactly one answer per question, applying the length policy.
func (c *Calculator) conform(in *instrument.Instrument, answers []int) ([]int, error) {
	n := len(in.Questions)

	if c.policy == LengthStrict {
		if len(answers) != n {
			return nil, &AnswerError{Instrument: in.ID, Want: n, Got: len(answers), Index: -1}
		}
		for i, a := range answers {
			if a != Unanswered && !in.Questions[i].HasValue(a) {
				return nil, &AnswerError{Instrument: in.ID, Want: n, Got: len(answers), Index: i, Value: a}
			}
		}
		return answers, nil
	}

	if len(answers) != n {
		c.log.Warn("answer count mismatch",
			zap.String("instrument", in.ID),
			zap.Int("expected", n),
			zap.Int("got", len(answers)),
		)
	}
	out := make([]int, n)
	for i := range out {
		if i < len(answers) {
			out[i] = answers[i]
		} else {
			out[i] = Unanswered
		}
	}
	return out, nil
}
