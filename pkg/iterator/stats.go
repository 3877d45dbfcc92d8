package iterator

import "fmt"

// Stats counts the work done by one or more iterators
type Stats struct {
	CellsVisited  int64 `json:"cellsVisited"` // non-degenerate macrocells entered
	CellsSkipped  int64 `json:"cellsSkipped"` // visited cells rejected by the selector
	Intervals     int64 `json:"intervals"`
	Hits          int64 `json:"hits"`
	RefineSamples int64 `json:"refineSamples"` // field samples taken by hit refinement
}

// Add accumulates other into s
func (s *Stats) Add(other Stats) {
	s.CellsVisited += other.CellsVisited
	s.CellsSkipped += other.CellsSkipped
	s.Intervals += other.Intervals
	s.Hits += other.Hits
	s.RefineSamples += other.RefineSamples
}

// SkipRatio returns the fraction of visited cells skipped by empty-space skipping
func (s Stats) SkipRatio() float64 {
	if s.CellsVisited == 0 {
		return 0
	}
	return float64(s.CellsSkipped) / float64(s.CellsVisited)
}

func (s Stats) String() string {
	return fmt.Sprintf("cells=%d skipped=%d (%.1f%%) intervals=%d hits=%d samples=%d",
		s.CellsVisited, s.CellsSkipped, 100*s.SkipRatio(), s.Intervals, s.Hits, s.RefineSamples)
}
