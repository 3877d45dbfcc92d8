package iterator

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/selector"
	"github.com/df07/go-volume-iterators/pkg/volume"
)

func isoSelector(values ...float32) *selector.ValueSelector {
	sel := selector.New()
	sel.SetValues(values)
	return sel
}

func collectHits(it *HitIterator) []Hit {
	var hits []Hit
	for it.Next() {
		hits = append(hits, it.Hit())
	}
	return hits
}

func TestHitIterator_RampCrossings(t *testing.T) {
	v := unitCube(t, 128, 16, volume.ZRamp)
	isos := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	ray := core.NewRay(core.NewVec3f(0.5, 0.5, -1), core.NewVec3f(0, 0, 1))

	it := NewHitIterator(v, ray, isoSelector(isos...), DefaultRefineConfig())
	hits := collectHits(it)

	require.Len(t, hits, len(isos))
	for i, h := range hits {
		assert.InDelta(t, 1+isos[i], h.T, tolerance, "hit %d", i)
		assert.InDelta(t, isos[i], h.Sample, tolerance, "hit %d", i)
	}
	assert.True(t, it.Done())
	assert.Equal(t, int64(len(isos)), it.Stats().Hits)
}

func TestHitIterator_DecreasingField(t *testing.T) {
	v := unitCube(t, 64, 16, volume.SphereDistance(core.Splat3f(0.5)))
	ray := core.NewRay(core.NewVec3f(0.5, 0.5, -1), core.NewVec3f(0, 0, 1))

	hits := collectHits(NewHitIterator(v, ray, isoSelector(0.15, 0.3, 0.45), DefaultRefineConfig()))

	// distance falls then rises along the ray, so iso-values come in reverse first
	expectedIso := []float32{0.45, 0.3, 0.15, 0.15, 0.3, 0.45}
	expectedZ := []float32{0.05, 0.2, 0.35, 0.65, 0.8, 0.95}
	require.Len(t, hits, len(expectedIso))
	for i, h := range hits {
		assert.InDelta(t, expectedIso[i], h.Sample, tolerance, "hit %d", i)
		assert.InDelta(t, 1+expectedZ[i], h.T, 2e-3, "hit %d", i)
		if i > 0 {
			assert.Greater(t, h.T, hits[i-1].T)
		}
	}
}

func TestHitIterator_CrossingOnCellBoundary(t *testing.T) {
	// 0.5 sits exactly on the plane between two macrocells and is reported once
	v := unitCube(t, 33, 8, volume.ZRamp)
	ray := core.NewRay(core.NewVec3f(0.5, 0.5, -1), core.NewVec3f(0, 0, 1))

	it := NewHitIterator(v, ray, isoSelector(0.5), DefaultRefineConfig())
	hits := collectHits(it)

	require.Len(t, hits, 1)
	assert.Equal(t, float32(1.5), hits[0].T)
	assert.Equal(t, float32(0.5), hits[0].Sample)
}

func TestHitIterator_Wavelet(t *testing.T) {
	v := unitCube(t, 48, 8, volume.Wavelet)
	isos := []float32{-1, 0, 1, 1.5}
	sel := isoSelector(isos...)

	total := 0
	for i, ray := range randomRays(v.BoundingBox(), 100, 11) {
		clipped, ok := v.BoundingBox().Clip(ray)
		require.True(t, ok, "ray %d aims inside the volume", i)

		hits := collectHits(NewHitIterator(v, ray, sel, DefaultRefineConfig()))
		total += len(hits)
		for j, h := range hits {
			if j > 0 {
				assert.Greater(t, h.T, hits[j-1].T, "ray %d hit %d", i, j)
			}
			assert.GreaterOrEqual(t, h.T, clipped.Lower, "ray %d hit %d", i, j)
			assert.LessOrEqual(t, h.T, clipped.Upper, "ray %d hit %d", i, j)
			assert.InDelta(t, nearest(isos, h.Sample), h.Sample, 1e-3, "ray %d hit %d", i, j)
		}
	}
	assert.Greater(t, total, 0)
}

func nearest(values []float32, v float32) float32 {
	best := values[0]
	for _, x := range values[1:] {
		if math32.Abs(x-v) < math32.Abs(best-v) {
			best = x
		}
	}
	return best
}

func TestHitIterator_NoHits(t *testing.T) {
	v := unitCube(t, 17, 4, volume.ZRamp)
	ray := core.NewRay(core.NewVec3f(0.5, 0.5, -1), core.NewVec3f(0, 0, 1))

	rangesOnly := selector.New()
	rangesOnly.SetRanges([]core.Range1f{core.NewRange1f(0, 1)})

	tests := []struct {
		name string
		ray  core.Ray
		sel  *selector.ValueSelector
	}{
		{"nil selector", ray, nil},
		{"ranges only", ray, rangesOnly},
		{"iso outside the field", ray, isoSelector(2, -0.5)},
		{"ray parallel to the iso-surface", core.NewRay(core.NewVec3f(-1, 0.5, 0.3), core.NewVec3f(1, 0, 0)), isoSelector(0.5)},
		{"ray misses", core.NewRay(core.NewVec3f(0.5, 0.5, -1), core.NewVec3f(0, 1, 0)), isoSelector(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := NewHitIterator(v, tt.ray, tt.sel, DefaultRefineConfig())
			assert.False(t, it.Next())
			assert.True(t, it.Done())
			assert.False(t, it.Next())
			assert.Equal(t, int64(0), it.Stats().Hits)
		})
	}
}

func TestHitIterator_Uncommitted(t *testing.T) {
	ray := core.NewRay(core.NewVec3f(0.5, 0.5, -1), core.NewVec3f(0, 0, 1))
	it := NewHitIterator(volume.NewStructuredVolume(), ray, isoSelector(0.5), DefaultRefineConfig())
	assert.False(t, it.Next())
	assert.Equal(t, StateExhausted, it.State())
}

func TestHitIterator_StateTransitions(t *testing.T) {
	v := unitCube(t, 33, 8, volume.ZRamp)
	ray := core.NewRay(core.NewVec3f(0.5, 0.5, -1), core.NewVec3f(0, 0, 1))

	it := NewHitIterator(v, ray, isoSelector(0.3, 0.6), DefaultRefineConfig())
	assert.Equal(t, StateCreated, it.State())

	require.True(t, it.Next())
	assert.Equal(t, StateActive, it.State())
	assert.InDelta(t, 1.3, it.Hit().T, tolerance)

	require.True(t, it.Next())
	assert.InDelta(t, 1.6, it.Hit().T, tolerance)

	assert.False(t, it.Next())
	assert.Equal(t, StateExhausted, it.State())

	stats := it.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Greater(t, stats.RefineSamples, int64(0))
	assert.Greater(t, stats.CellsSkipped, int64(0), "cells without an iso-value are skipped")
}

func TestHitIterator_IterationLimit(t *testing.T) {
	// a curved field keeps the initial linear estimate off the root
	v := unitCube(t, 9, 8, func(p core.Vec3f) float32 { return p.Z * p.Z * p.Z })
	ray := core.NewRay(core.NewVec3f(0.5, 0.5, -1), core.NewVec3f(0, 0, 1))
	sel := isoSelector(0.3)

	coarse := collectHits(NewHitIterator(v, ray, sel, RefineConfig{MaxIterations: 0}))
	fine := collectHits(NewHitIterator(v, ray, sel, DefaultRefineConfig()))

	require.Len(t, coarse, 1)
	require.Len(t, fine, 1)
	assert.InDelta(t, 0.3, fine[0].Sample, 1e-5)
	assert.Less(t, math32.Abs(fine[0].Sample-0.3), math32.Abs(coarse[0].Sample-0.3))
}

func TestFalsePosition(t *testing.T) {
	assert.InDelta(t, 0.25, falsePosition(0, 1, -1, 3), 1e-7)
	assert.Equal(t, float32(2), falsePosition(1, 2, -1, -0.0001), "clamped to the bracket")
}
