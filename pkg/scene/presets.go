package scene

import (
	"context"

	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/volume"
)

func init() {
	register(preset{
		info: SceneInfo{ID: "zramp", Description: "linear ramp along z with iso-values 0.1 to 0.9", Resolution: 128},
		build: func(ctx context.Context, opts Options) (*Scene, error) {
			return newScene(ctx, "zramp", opts, volume.ZRamp, rampIsoValues())
		},
	})
	register(preset{
		info: SceneInfo{ID: "wavelet", Description: "sum of sines with iso-values -1, 0 and 1", Resolution: 64},
		build: func(ctx context.Context, opts Options) (*Scene, error) {
			return newScene(ctx, "wavelet", opts, volume.Wavelet, []float32{-1, 0, 1})
		},
	})
	register(preset{
		info: SceneInfo{ID: "sphere", Description: "distance from the cube center, nested spheres", Resolution: 64},
		build: func(ctx context.Context, opts Options) (*Scene, error) {
			center := core.Splat3f(0.5)
			return newScene(ctx, "sphere", opts, volume.SphereDistance(center), []float32{0.15, 0.3, 0.45})
		},
	})
}

func newScene(ctx context.Context, name string, opts Options, fn volume.FieldFunc, isoValues []float32) (*Scene, error) {
	v, err := buildVolume(ctx, opts, fn)
	if err != nil {
		return nil, err
	}
	return &Scene{
		Name:      name,
		Volume:    v,
		IsoValues: isoValues,
		Camera:    defaultCamera(),
	}, nil
}

// rampIsoValues returns 0.1, 0.2, ..., 0.9
func rampIsoValues() []float32 {
	values := make([]float32, 9)
	for i := range values {
		values[i] = float32(i+1) / 10
	}
	return values
}
