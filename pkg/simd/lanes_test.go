package simd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/go-volume-iterators/pkg/core"
)

func TestValidateWidth(t *testing.T) {
	for _, w := range []int{1, 4, 8, 16} {
		assert.NoError(t, ValidateWidth(w), "width %d", w)
	}
	for _, w := range []int{0, 2, 3, 5, 32, -1} {
		assert.ErrorIs(t, ValidateWidth(w), ErrUnsupportedWidth, "width %d", w)
	}
}

func TestMask(t *testing.T) {
	m := NewMask(8, 3)
	assert.Len(t, m, 8)
	assert.Equal(t, 3, m.Count())
	assert.True(t, m.Any())
	assert.True(t, m[2])
	assert.False(t, m[3])

	m.Clear()
	assert.False(t, m.Any())
	assert.Equal(t, 0, m.Count())

	assert.Equal(t, 4, NewMask(4, 10).Count(), "active is capped at width")
}

func TestVVec3f(t *testing.T) {
	v := NewVVec3f(4)
	assert.Equal(t, 4, v.Width())

	v.SetLane(2, core.NewVec3f(1, 2, 3))
	assert.Equal(t, core.NewVec3f(1, 2, 3), v.Lane(2))
	assert.Equal(t, core.Vec3f{}, v.Lane(1))

	v.Y = v.Y[:3]
	assert.Equal(t, -1, v.Width())
}

func TestVRange1f(t *testing.T) {
	r := NewVRange1f(8)
	r.SetLane(7, core.NewRange1f(-1, 1))
	assert.Equal(t, core.NewRange1f(-1, 1), r.Lane(7))
	assert.Equal(t, 8, r.Width())

	r.Upper = nil
	assert.Equal(t, -1, r.Width())
}

func TestCheckLanes(t *testing.T) {
	assert.NoError(t, CheckLanes(4, 4, 4, 4))
	assert.ErrorIs(t, CheckLanes(4, 4, 8), ErrLaneCount)
	assert.ErrorIs(t, CheckLanes(4, -1), ErrLaneCount)
	assert.ErrorIs(t, CheckLanes(3, 3), ErrUnsupportedWidth)
}
