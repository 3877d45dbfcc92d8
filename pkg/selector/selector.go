// Package selector holds the scalar ranges and iso-values a traversal query
// is interested in.
package selector

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/df07/go-volume-iterators/pkg/core"
)

// ValueSelector filters macrocells by value. It must not be modified while
// iterators that use it are in flight.
type ValueSelector struct {
	ranges []core.Range1f
	values []float32 // sorted, unique, no NaN
}

// New creates an empty selector; it overlaps nothing until ranges or values are set
func New() *ValueSelector {
	return &ValueSelector{}
}

// SetRanges replaces the selected ranges. Inverted ranges select nothing.
func (s *ValueSelector) SetRanges(ranges []core.Range1f) {
	s.ranges = s.ranges[:0]
	for _, r := range ranges {
		if r.IsEmpty() {
			continue
		}
		s.ranges = append(s.ranges, r)
	}
}

// SetValues replaces the selected discrete values. Order and duplicates do not matter.
func (s *ValueSelector) SetValues(values []float32) {
	sorted := make([]float32, 0, len(values))
	for _, v := range values {
		if !math32.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	unique := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			unique = append(unique, v)
		}
	}
	s.values = unique
}

// Ranges returns a copy of the selected ranges
func (s *ValueSelector) Ranges() []core.Range1f {
	return append([]core.Range1f(nil), s.ranges...)
}

// Values returns a copy of the selected values in ascending order
func (s *ValueSelector) Values() []float32 {
	return append([]float32(nil), s.values...)
}

// IsEmpty returns true if nothing is selected
func (s *ValueSelector) IsEmpty() bool {
	return len(s.ranges) == 0 && len(s.values) == 0
}

// HasValues returns true if at least one discrete value is selected
func (s *ValueSelector) HasValues() bool {
	return len(s.values) > 0
}

// Overlaps returns true if r intersects a selected range or contains a
// selected value. Endpoints are inclusive.
func (s *ValueSelector) Overlaps(r core.Range1f) bool {
	if r.IsEmpty() {
		return false
	}
	for _, selected := range s.ranges {
		if selected.Overlaps(r) {
			return true
		}
	}
	i := s.firstValueAtLeast(r.Lower)
	return i < len(s.values) && s.values[i] <= r.Upper
}

// ValuesIn returns the selected values inside r in ascending order. The
// result aliases internal storage and must not be modified.
func (s *ValueSelector) ValuesIn(r core.Range1f) []float32 {
	if r.IsEmpty() {
		return nil
	}
	lo := s.firstValueAtLeast(r.Lower)
	hi := lo
	for hi < len(s.values) && s.values[hi] <= r.Upper {
		hi++
	}
	return s.values[lo:hi:hi]
}

// ValuesOnly returns a selector holding only this selector's values, used
// by hit iteration where ranges carry no meaning
func (s *ValueSelector) ValuesOnly() *ValueSelector {
	return &ValueSelector{values: s.values}
}

func (s *ValueSelector) firstValueAtLeast(v float32) int {
	return sort.Search(len(s.values), func(i int) bool { return s.values[i] >= v })
}
