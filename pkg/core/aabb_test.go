package core

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange1f(t *testing.T) {
	r := NewRange1f(0.25, 0.75)

	assert.False(t, r.IsEmpty())
	assert.True(t, r.Contains(0.25), "lower endpoint is inclusive")
	assert.True(t, r.Contains(0.75), "upper endpoint is inclusive")
	assert.False(t, r.Contains(0.8))

	assert.True(t, r.Overlaps(NewRange1f(0.75, 1)), "touching ranges overlap")
	assert.False(t, r.Overlaps(NewRange1f(0.76, 1)))

	assert.True(t, NewRange1f(1, 0).IsEmpty())
	assert.True(t, NewRange1f(math32.NaN(), 1).IsEmpty())
	assert.InDelta(t, 0.5, r.Size(), 1e-7)
}

func TestRange1f_Extend(t *testing.T) {
	r := EmptyRange()
	assert.True(t, r.IsEmpty())

	r = r.Extend(3).Extend(-1).Extend(math32.NaN())
	assert.Equal(t, NewRange1f(-1, 3), r)

	assert.Equal(t, r, r.Union(EmptyRange()))
	assert.Equal(t, r, EmptyRange().Union(r))
	assert.Equal(t, NewRange1f(-1, 5), r.Union(NewRange1f(4, 5)))
}

func TestBox3f_Clip(t *testing.T) {
	box := NewBox3f(NewVec3f(0, 0, 0), NewVec3f(1, 1, 1))

	tests := []struct {
		name     string
		ray      Ray
		hit      bool
		expected Range1f
	}{
		{
			name:     "through the middle",
			ray:      NewRay(NewVec3f(0.5, 0.5, -1), NewVec3f(0, 0, 1)),
			hit:      true,
			expected: NewRange1f(1, 2),
		},
		{
			name:     "origin inside",
			ray:      NewRay(NewVec3f(0.5, 0.5, 0.5), NewVec3f(1, 0, 0)),
			hit:      true,
			expected: NewRange1f(0, 0.5),
		},
		{
			name:     "negative direction",
			ray:      NewRay(NewVec3f(0.5, 2, 0.5), NewVec3f(0, -1, 0)),
			hit:      true,
			expected: NewRange1f(1, 2),
		},
		{
			name: "parallel outside slab",
			ray:  NewRay(NewVec3f(2, 0.5, -1), NewVec3f(0, 0, 1)),
			hit:  false,
		},
		{
			name: "pointing away",
			ray:  NewRay(NewVec3f(0.5, 0.5, -1), NewVec3f(0, 0, -1)),
			hit:  false,
		},
		{
			name:     "restricted t-range",
			ray:      NewRayRange(NewVec3f(0.5, 0.5, -1), NewVec3f(0, 0, 1), NewRange1f(1.25, 1.5)),
			hit:      true,
			expected: NewRange1f(1.25, 1.5),
		},
		{
			name: "t-range ends before the box",
			ray:  NewRayRange(NewVec3f(0.5, 0.5, -1), NewVec3f(0, 0, 1), NewRange1f(0, 0.5)),
			hit:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := box.Clip(tt.ray)
			require.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.InDelta(t, tt.expected.Lower, r.Lower, 1e-6)
				assert.InDelta(t, tt.expected.Upper, r.Upper, 1e-6)
			}
		})
	}
}

func TestBox3f_Clamp(t *testing.T) {
	box := NewBox3f(NewVec3f(0, 0, 0), NewVec3f(1, 2, 3))

	assert.Equal(t, NewVec3f(0, 2, 1.5), box.Clamp(NewVec3f(-1, 5, 1.5)))
	assert.True(t, box.Contains(box.Max))
	assert.False(t, box.Contains(NewVec3f(0, 0, 3.1)))
	assert.Equal(t, NewVec3f(0.5, 1, 1.5), box.Center())
	assert.True(t, box.IsValid())
	assert.False(t, NewBox3f(box.Max, box.Min).IsValid())
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3f(1, 0, 0), NewVec3f(0, 2, 0))
	assert.Equal(t, NewVec3f(1, 3, 0), ray.At(1.5))
	assert.True(t, math32.IsInf(ray.TRange.Upper, 1))
}
