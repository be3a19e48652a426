package instrument

import (
	"fmt"
	"sort"
	"strings"
)

// SlotCount is the fixed length of the feature vector that instrument offsets index into.
const SlotCount = 201

// Validate checks a set of instruments for structural consistency: question and
// option shape, severity tables, subscale partitions, screening criteria, and
// feature-vector slot layout. It returns every violation found.
func Validate(instruments []Instrument) []Violation {
	var errs []Violation

	names := make(map[string]string)
	for i := range instruments {
		in := &instruments[i]
		prefix := fmt.Sprintf("instruments[%d]", i)
		if in.ID != "" {
			prefix = fmt.Sprintf("instruments[%q]", in.ID)
		}

		if in.ID == "" {
			errs = append(errs, Violation{prefix + ".id", "required"})
		}
		for _, name := range append([]string{in.ID}, in.Aliases...) {
			if name == "" {
				continue
			}
			key := normalize(name)
			if owner, ok := names[key]; ok {
				errs = append(errs, Violation{prefix + ".id", fmt.Sprintf("name %q already used by %q", name, owner)})
				continue
			}
			names[key] = in.ID
		}

		errs = append(errs, validateQuestions(prefix, in)...)
		if len(in.Questions) == 0 {
			continue
		}

		if in.Offset < 0 || in.Offset+len(in.Questions) > SlotCount {
			errs = append(errs, Violation{prefix + ".offset", fmt.Sprintf("slots [%d, %d) outside [0, %d)", in.Offset, in.Offset+len(in.Questions), SlotCount)})
		}

		errs = append(errs, validateScoring(prefix+".scoring", in)...)
	}

	errs = append(errs, validateLayout(instruments)...)
	return errs
}

func validateQuestions(prefix string, in *Instrument) []Violation {
	var errs []Violation
	if len(in.Questions) == 0 {
		return append(errs, Violation{prefix + ".questions", "at least one question required"})
	}
	for j, q := range in.Questions {
		qp := fmt.Sprintf("%s.questions[%d]", prefix, j)
		if q.Prompt == "" {
			errs = append(errs, Violation{qp + ".prompt", "required"})
		}
		if len(q.Options) == 0 {
			errs = append(errs, Violation{qp + ".options", "at least one option required"})
			continue
		}
		seen := make(map[int]bool)
		for k, o := range q.Options {
			if o.Value < 0 {
				errs = append(errs, Violation{fmt.Sprintf("%s.options[%d].value", qp, k), fmt.Sprintf("negative value %d", o.Value)})
			}
			if seen[o.Value] {
				errs = append(errs, Violation{fmt.Sprintf("%s.options[%d].value", qp, k), fmt.Sprintf("duplicate value %d", o.Value)})
			}
			seen[o.Value] = true
		}
	}
	return errs
}

func validateScoring(prefix string, in *Instrument) []Violation {
	var errs []Violation
	sc := in.Scoring
	n := len(in.Questions)

	switch sc.Rule {
	case RuleSimpleSum:
		lo, hi := scoreDomain(in.Questions)
		errs = append(errs, validateLevels(prefix+".severity_levels", sc.SeverityLevels, lo, hi)...)

	case RuleSubscaleSum:
		if sc.Subscales == nil || len(sc.Subscales.Groups) == 0 {
			return append(errs, Violation{prefix + ".subscales", "at least one group required"})
		}
		next := 0
		groups := make(map[string]bool)
		for k, g := range sc.Subscales.Groups {
			gp := fmt.Sprintf("%s.subscales.groups[%d]", prefix, k)
			if g.Name == "" {
				errs = append(errs, Violation{gp + ".name", "required"})
			} else if groups[g.Name] {
				errs = append(errs, Violation{gp + ".name", fmt.Sprintf("duplicate group %q", g.Name)})
			}
			groups[g.Name] = true
			if g.Span.Start != next {
				errs = append(errs, Violation{gp + ".span", fmt.Sprintf("starts at %d, want %d (groups must be contiguous)", g.Span.Start, next)})
			}
			if g.Span.Start < 0 || g.Span.Len() <= 0 || g.Span.End > n {
				errs = append(errs, Violation{gp + ".span", fmt.Sprintf("[%d, %d) is empty or exceeds %d questions", g.Span.Start, g.Span.End, n)})
				next = g.Span.End
				continue
			}
			next = g.Span.End
			lo, hi := scoreDomain(in.Questions[g.Span.Start:g.Span.End])
			errs = append(errs, validateLevels(gp+".severity_levels", g.SeverityLevels, lo, hi)...)
		}
		if next != n {
			errs = append(errs, Violation{prefix + ".subscales", fmt.Sprintf("groups cover %d of %d questions", next, n)})
		}
		if agg := sc.Subscales.Aggregate; agg != "" && !groups[agg] {
			errs = append(errs, Violation{prefix + ".subscales.aggregate", fmt.Sprintf("unknown group %q", agg)})
		}

	case RuleCriteriaScreen:
		scr := sc.Screen
		if scr == nil || len(scr.Criteria) == 0 {
			return append(errs, Violation{prefix + ".screen", "at least one criterion required"})
		}
		for k, c := range scr.Criteria {
			cp := fmt.Sprintf("%s.screen.criteria[%d]", prefix, k)
			if c.Span.Start < 0 || c.Span.Len() <= 0 || c.Span.End > n {
				errs = append(errs, Violation{cp + ".span", fmt.Sprintf("[%d, %d) is empty or outside %d questions", c.Span.Start, c.Span.End, n)})
				continue
			}
			if c.Compare != CompareEqual && c.Compare != CompareAtLeast {
				errs = append(errs, Violation{cp + ".compare", fmt.Sprintf("invalid: %q", c.Compare)})
			}
			if c.MinCount < 1 || c.MinCount > c.Span.Len() {
				errs = append(errs, Violation{cp + ".min_count", fmt.Sprintf("%d outside [1, %d]", c.MinCount, c.Span.Len())})
			}
			if len(c.Cutoffs) > 0 && len(c.Cutoffs) != c.Span.Len() {
				errs = append(errs, Violation{cp + ".cutoffs", fmt.Sprintf("has %d entries, span has %d questions", len(c.Cutoffs), c.Span.Len())})
			}
		}
		if scr.PositiveLabel == "" {
			errs = append(errs, Violation{prefix + ".screen.positive_label", "required"})
		}
		if scr.NegativeLabel == "" {
			errs = append(errs, Violation{prefix + ".screen.negative_label", "required"})
		}
		switch scr.Report {
		case "", ScreenReportBinary:
		case ScreenReportSum:
			lo, hi := scoreDomain(in.Questions)
			errs = append(errs, validateLevels(prefix+".severity_levels", sc.SeverityLevels, lo, hi)...)
		default:
			errs = append(errs, Violation{prefix + ".screen.report", fmt.Sprintf("invalid: %q", scr.Report)})
		}

	default:
		errs = append(errs, Violation{prefix + ".rule", fmt.Sprintf("invalid: %q", sc.Rule)})
	}

	return errs
}

// validateLevels checks that levels are well-formed, non-overlapping, and claim
// every integer score in [lo, hi].
func validateLevels(prefix string, levels []SeverityLevel, lo, hi int) []Violation {
	var errs []Violation
	if len(levels) == 0 {
		return append(errs, Violation{prefix, "at least one severity level required"})
	}
	for i, l := range levels {
		if l.Label == "" {
			errs = append(errs, Violation{fmt.Sprintf("%s[%d].label", prefix, i), "required"})
		}
		if l.Low > l.High {
			errs = append(errs, Violation{fmt.Sprintf("%s[%d]", prefix, i), fmt.Sprintf("low %d > high %d", l.Low, l.High)})
		}
		for j := 0; j < i; j++ {
			if l.Low <= levels[j].High && levels[j].Low <= l.High {
				errs = append(errs, Violation{fmt.Sprintf("%s[%d]", prefix, i), fmt.Sprintf("[%d, %d] overlaps %q", l.Low, l.High, levels[j].Label)})
			}
		}
	}
	for s := lo; s <= hi; s++ {
		claimed := false
		for _, l := range levels {
			if l.Contains(s) {
				claimed = true
				break
			}
		}
		if !claimed {
			errs = append(errs, Violation{prefix, fmt.Sprintf("score %d in domain [%d, %d] is not covered", s, lo, hi)})
			break
		}
	}
	return errs
}

// validateLayout checks that no two instruments claim the same vector slot.
func validateLayout(instruments []Instrument) []Violation {
	type slot struct {
		id         string
		start, end int
	}
	var slots []slot
	for _, in := range instruments {
		if len(in.Questions) == 0 {
			continue
		}
		slots = append(slots, slot{in.ID, in.Offset, in.Offset + len(in.Questions)})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].start < slots[j].start })

	var errs []Violation
	for i := 1; i < len(slots); i++ {
		prev, cur := slots[i-1], slots[i]
		if cur.start < prev.end {
			errs = append(errs, Violation{
				fmt.Sprintf("instruments[%q].offset", cur.id),
				fmt.Sprintf("slots [%d, %d) overlap %q [%d, %d)", cur.start, cur.end, prev.id, prev.start, prev.end),
			})
		}
	}
	return errs
}

// scoreDomain returns the minimum and maximum possible sum over the questions.
func scoreDomain(questions []Question) (lo, hi int) {
	for _, q := range questions {
		qlo, qhi := q.valueRange()
		lo += qlo
		hi += qhi
	}
	return lo, hi
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
