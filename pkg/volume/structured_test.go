package volume

import (
	"context"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-volume-iterators/pkg/accel"
	"github.com/df07/go-volume-iterators/pkg/core"
)

// linearField is exactly reproduced by trilinear interpolation
func linearField(p core.Vec3f) float32 {
	return 2*p.X - p.Y + 0.5*p.Z
}

func newLinearVolume(t *testing.T, filter Filter) *StructuredVolume {
	t.Helper()
	dims := core.NewVec3i(5, 6, 7)
	origin := core.NewVec3f(1, -1, 0)
	spacing := core.NewVec3f(0.5, 1, 2)

	v := NewStructuredVolume()
	v.SetDimensions(dims)
	v.SetGridOrigin(origin)
	v.SetGridSpacing(spacing)
	v.SetVoxelData(GenerateVoxels(dims, origin, spacing, linearField))
	v.SetFilter(filter)
	v.SetMacrocellWidth(2)
	v.SetBuildWorkers(2)
	require.NoError(t, v.Commit(context.Background()))
	return v
}

func TestStructuredVolume_Uncommitted(t *testing.T) {
	v := NewStructuredVolume()
	assert.False(t, v.IsCommitted())
	assert.Nil(t, v.Accelerator())
	assert.True(t, v.ValueRange().IsEmpty())
	assert.True(t, math32.IsNaN(v.Sample(core.Vec3f{})))
	assert.ErrorIs(t, v.Commit(context.Background()), ErrNoVoxelData)
}

func TestStructuredVolume_Bounds(t *testing.T) {
	v := newLinearVolume(t, FilterTrilinear)

	assert.True(t, v.IsCommitted())
	assert.Equal(t, core.NewBox3f(core.NewVec3f(1, -1, 0), core.NewVec3f(3, 4, 12)), v.BoundingBox())
	assert.Equal(t, core.NewVec3i(5, 6, 7), v.Dimensions())
	assert.Equal(t, core.NewVec3i(3, 3, 4), v.Accelerator().CellDims())

	r := v.ValueRange()
	assert.InDelta(t, linearField(core.NewVec3f(1, 4, 0)), r.Lower, 1e-5)
	assert.InDelta(t, linearField(core.NewVec3f(3, -1, 12)), r.Upper, 1e-5)
}

func TestStructuredVolume_SampleTrilinear(t *testing.T) {
	v := newLinearVolume(t, FilterTrilinear)

	points := []core.Vec3f{
		core.NewVec3f(1, -1, 0),
		core.NewVec3f(3, 4, 12),
		core.NewVec3f(1.3, 0.25, 5.1),
		core.NewVec3f(2.99, 3.5, 11.9),
		core.NewVec3f(2, 1.5, 6),
	}
	for _, p := range points {
		assert.InDelta(t, linearField(p), v.Sample(p), 1e-4, "sample at %v", p)
	}

	assert.True(t, math32.IsNaN(v.Sample(core.NewVec3f(0.9, 0, 0))), "outside the bounds")
	assert.True(t, math32.IsNaN(v.Sample(core.NewVec3f(2, 2, 12.5))))
}

func TestStructuredVolume_SampleNearest(t *testing.T) {
	v := newLinearVolume(t, FilterNearest)
	assert.Equal(t, FilterNearest, v.Filter())

	// (1.3, 0.25, 5.1) rounds to voxel (1, 1, 3) at world (1.5, 0, 6)
	assert.InDelta(t, linearField(core.NewVec3f(1.5, 0, 6)), v.Sample(core.NewVec3f(1.3, 0.25, 5.1)), 1e-6)
}

func TestStructuredVolume_Gradient(t *testing.T) {
	v := newLinearVolume(t, FilterTrilinear)

	for _, p := range []core.Vec3f{
		core.NewVec3f(2, 1.5, 6),
		core.NewVec3f(1, -1, 0), // corner, one-sided
		core.NewVec3f(3, 4, 12),
	} {
		g := v.Gradient(p)
		assert.InDelta(t, 2, g.X, 1e-4, "at %v", p)
		assert.InDelta(t, -1, g.Y, 1e-4, "at %v", p)
		assert.InDelta(t, 0.5, g.Z, 1e-4, "at %v", p)
	}
	assert.False(t, v.Gradient(core.NewVec3f(10, 0, 0)).IsFinite())
}

func TestStructuredVolume_FailedCommitKeepsState(t *testing.T) {
	v := newLinearVolume(t, FilterTrilinear)
	before := v.Accelerator()
	p := core.NewVec3f(2, 1.5, 6)
	sample := v.Sample(p)

	tests := []struct {
		name     string
		mutate   func()
		expected error
	}{
		{"data size", func() { v.SetVoxelData(make([]float32, 3)) }, accel.ErrDataSize},
		{"spacing", func() { v.SetGridSpacing(core.NewVec3f(0, 1, 1)) }, accel.ErrSpacing},
		{"dimensions", func() { v.SetDimensions(core.NewVec3i(1, 6, 7)) }, accel.ErrDimensions},
		{"cell width", func() { v.SetMacrocellWidth(0) }, accel.ErrCellWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := v.params
			defer func() { v.params = good }()

			tt.mutate()
			assert.ErrorIs(t, v.Commit(context.Background()), tt.expected)
			assert.Same(t, before, v.Accelerator())
			assert.Equal(t, sample, v.Sample(p))
		})
	}
}

func TestStructuredVolume_CommitCopiesData(t *testing.T) {
	dims := core.NewVec3i(2, 2, 2)
	data := []float32{0, 1, 2, 3, 4, 5, 6, 7}

	v := NewStructuredVolume()
	v.SetDimensions(dims)
	v.SetVoxelData(data)
	require.NoError(t, v.Commit(context.Background()))

	data[0] = 100
	assert.Equal(t, float32(0), v.Sample(core.Vec3f{}))
	assert.Equal(t, core.NewRange1f(0, 7), v.ValueRange())
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input    string
		expected Filter
		wantErr  bool
	}{
		{"", FilterTrilinear, false},
		{"trilinear", FilterTrilinear, false},
		{"Linear", FilterTrilinear, false},
		{"nearest", FilterNearest, false},
		{"cubic", FilterTrilinear, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFilter(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}
