package volume

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-volume-iterators/pkg/core"
)

func TestRegistry(t *testing.T) {
	assert.Contains(t, Types(), StructuredRegular)

	v, err := New(StructuredRegular)
	require.NoError(t, err)
	assert.IsType(t, &StructuredVolume{}, v)
	assert.Nil(t, v.Accelerator())

	_, err = New("unstructured")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestNewProcedural(t *testing.T) {
	dims := core.NewVec3i(9, 9, 9)
	v, err := NewProcedural(context.Background(), dims, core.Vec3f{}, UnitCubeSpacing(dims), ZRamp)
	require.NoError(t, err)

	assert.Equal(t, core.NewBox3f(core.Vec3f{}, core.Splat3f(1)), v.BoundingBox())
	assert.Equal(t, core.NewRange1f(0, 1), v.ValueRange())
	assert.InDelta(t, 0.37, v.Sample(core.NewVec3f(0.2, 0.9, 0.37)), 1e-5)
}

func TestProceduralFields(t *testing.T) {
	p := core.NewVec3f(0.5, 0.5, 0.5)
	assert.Equal(t, float32(0.5), ZRamp(p))
	assert.Equal(t, float32(3), Constant(3)(p))
	assert.InDelta(t, 0.5, SphereDistance(core.Vec3f{})(core.NewVec3f(0, 0.3, 0.4)), 1e-6)
	assert.InDelta(t, 1, Wavelet(core.Vec3f{}), 1e-6)
}

func TestGenerateVoxels_Layout(t *testing.T) {
	dims := core.NewVec3i(3, 2, 2)
	data := GenerateVoxels(dims, core.Vec3f{}, core.Splat3f(1), func(p core.Vec3f) float32 {
		return p.X + 10*p.Y + 100*p.Z
	})
	assert.Equal(t, []float32{0, 1, 2, 10, 11, 12, 100, 101, 102, 110, 111, 112}, data)
}
