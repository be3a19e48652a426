// Package features builds the fixed-length positional answer vector consumed by
// the downstream model. Slot offsets come from the instrument catalog and form a
// wire contract: an instrument's answers always land at the same positions.
package features

import (
	"errors"
	"fmt"
	"sort"

	"github.com/psyscore/psyscore/pkg/instrument"
)

// Length is the number of slots in a Vector.
const Length = instrument.SlotCount

// Vector is a positional encoding of every selected instrument's answers.
// Slots of unselected instruments are zero.
type Vector [Length]int

// Slot describes where one instrument's answers live in the vector.
type Slot struct {
	Instrument string `json:"instrument"`
	ShortName  string `json:"short_name"`
	Offset     int    `json:"offset"`
	Count      int    `json:"count"`
}

// End returns the first slot past the instrument's range.
func (s Slot) End() int { return s.Offset + s.Count }

// Encoder maps answers into vector slots using catalog offsets.
// It has no knowledge of scoring and is safe for concurrent use.
type Encoder struct {
	catalog *instrument.Catalog
}

// NewEncoder creates an encoder over a validated catalog.
func NewEncoder(catalog *instrument.Catalog) *Encoder {
	return &Encoder{catalog: catalog}
}

// ErrDuplicateInstrument is matched by errors.Is when one instrument is
// selected more than once, directly or through an alias.
var ErrDuplicateInstrument = errors.New("instrument selected more than once")

// Encode walks selected in order with a cursor into flat, the concatenation of
// each selected instrument's answers. Each instrument consumes as many values
// as it has questions. When flat runs out the remaining slots stay zero, and
// unanswered values are written as zero. Selecting the same instrument twice
// is an error.
func (e *Encoder) Encode(selected []string, flat []int) (Vector, error) {
	var v Vector
	seen := make(map[string]bool, len(selected))
	cursor := 0
	for _, id := range selected {
		in, err := e.resolve(id, seen)
		if err != nil {
			return Vector{}, err
		}
		n := len(in.Questions)
		end := cursor + n
		if end > len(flat) {
			end = len(flat)
		}
		if cursor < end {
			place(&v, in.Offset, flat[cursor:end])
		}
		cursor += n
	}
	return v, nil
}

// EncodeAnswers places each instrument's answers at its offset without a shared
// cursor. Answers beyond an instrument's question count are ignored. Two keys
// naming the same instrument are an error.
func (e *Encoder) EncodeAnswers(answers map[string][]int) (Vector, error) {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var v Vector
	seen := make(map[string]bool, len(answers))
	for _, id := range ids {
		in, err := e.resolve(id, seen)
		if err != nil {
			return Vector{}, err
		}
		a := answers[id]
		if len(a) > len(in.Questions) {
			a = a[:len(in.Questions)]
		}
		place(&v, in.Offset, a)
	}
	return v, nil
}

// resolve looks up id and records its canonical id in seen.
func (e *Encoder) resolve(id string, seen map[string]bool) (*instrument.Instrument, error) {
	in, err := e.catalog.Get(id)
	if err != nil {
		return nil, fmt.Errorf("encoding features: %w", err)
	}
	if seen[in.ID] {
		return nil, fmt.Errorf("encoding features: %q: %w", in.ID, ErrDuplicateInstrument)
	}
	seen[in.ID] = true
	return in, nil
}

// Layout returns the slot table ordered by offset.
func (e *Encoder) Layout() []Slot {
	all := e.catalog.All()
	slots := make([]Slot, 0, len(all))
	for _, in := range all {
		slots = append(slots, Slot{
			Instrument: in.ID,
			ShortName:  in.ShortName,
			Offset:     in.Offset,
			Count:      len(in.Questions),
		})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Offset < slots[j].Offset })
	return slots
}

func place(v *Vector, offset int, answers []int) {
	for i, a := range answers {
		if a < 0 {
			a = 0
		}
		v[offset+i] = a
	}
}

// Slice returns the vector as a slice, the shape most JSON consumers expect.
func (v Vector) Slice() []int {
	out := make([]int, Length)
	copy(out, v[:])
	return out
}
