package renderer

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/df07/go-volume-iterators/pkg/iterator"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels int // Total number of pixels rendered
	PixelsHit   int // Pixels whose ray crossed at least one iso-surface
	TotalHits   int // Iso-surface crossings over all rays
	Batches     int // Lane batches dispatched to the driver
	Traversal   iterator.Stats
}

// Merge accumulates the statistics of another tile
func (s *RenderStats) Merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.PixelsHit += other.PixelsHit
	s.TotalHits += other.TotalHits
	s.Batches += other.Batches
	s.Traversal.Add(other.Traversal)
}

// LaneOccupancy returns the average fraction of lanes carrying a ray per batch
func (s RenderStats) LaneOccupancy(lanes int) float64 {
	if s.Batches == 0 || lanes == 0 {
		return 0
	}
	return float64(s.TotalPixels) / float64(s.Batches*lanes)
}

func (s RenderStats) String() string {
	return fmt.Sprintf("%s pixels, %s hit, %s crossings, %s batches; %v",
		humanize.Comma(int64(s.TotalPixels)),
		humanize.Comma(int64(s.PixelsHit)),
		humanize.Comma(int64(s.TotalHits)),
		humanize.Comma(int64(s.Batches)),
		s.Traversal)
}
