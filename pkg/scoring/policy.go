package scoring

import (
	"fmt"
	"strings"
)

// LengthPolicy decides what happens when the number of answers differs from
// the instrument's question count.
type LengthPolicy string

const (
	// LengthTolerant ignores excess answers, treats missing ones as unanswered,
	// and logs the mismatch.
	LengthTolerant LengthPolicy = "tolerant"
	// LengthStrict rejects mismatched lengths and undeclared option values.
	LengthStrict LengthPolicy = "strict"
)

// ParseLengthPolicy parses a policy name. The empty string selects LengthTolerant.
func ParseLengthPolicy(s string) (LengthPolicy, error) {
	switch LengthPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LengthTolerant:
		return LengthTolerant, nil
	case LengthStrict:
		return LengthStrict, nil
	}
	return "", fmt.Errorf("unknown length policy %q (want %q or %q)", s, LengthTolerant, LengthStrict)
}

// AnswerError reports answers rejected under LengthStrict.
type AnswerError struct {
	Instrument string
	Want       int // expected answer count
	Got        int // supplied answer count
	Index      int // offending position, -1 for a length mismatch
	Value      int
}

func (e *AnswerError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: expected %d answers, got %d", e.Instrument, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: answer %d has value %d, which is not a declared option", e.Instrument, e.Index, e.Value)
}
