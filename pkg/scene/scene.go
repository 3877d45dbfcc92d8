package scene

import (
	"context"
	"fmt"
	"sort"

	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/selector"
	"github.com/df07/go-volume-iterators/pkg/volume"
)

// Scene is a committed volume together with the iso-values and camera used to view it
type Scene struct {
	Name      string
	Volume    *volume.StructuredVolume
	IsoValues []float32
	Camera    CameraConfig
}

// CameraConfig places a pinhole camera
type CameraConfig struct {
	Position core.Vec3f
	LookAt   core.Vec3f
	Up       core.Vec3f
	VFov     float32 // vertical field of view in degrees
}

// Options control how scene volumes are built
type Options struct {
	Resolution     int // voxels per axis, 0 = preset default
	MacrocellWidth int
	BuildWorkers   int
	Filter         volume.Filter
}

// DefaultOptions returns the preset resolution and 16-voxel macrocells
func DefaultOptions() Options {
	return Options{MacrocellWidth: 16, Filter: volume.FilterTrilinear}
}

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Resolution  int    `json:"resolution"`
}

type preset struct {
	info  SceneInfo
	build func(ctx context.Context, opts Options) (*Scene, error)
}

var presets = map[string]preset{}

func register(p preset) {
	presets[p.info.ID] = p
}

// List returns the built-in scenes sorted by id
func List() []SceneInfo {
	infos := make([]SceneInfo, 0, len(presets))
	for _, p := range presets {
		infos = append(infos, p.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// New builds and commits the named scene
func New(ctx context.Context, name string, opts Options) (*Scene, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", name)
	}
	if opts.Resolution == 0 {
		opts.Resolution = p.info.Resolution
	}
	if opts.Resolution < 2 {
		return nil, fmt.Errorf("scene %s: resolution must be at least 2, got %d", name, opts.Resolution)
	}
	return p.build(ctx, opts)
}

// Selector returns a value selector holding the scene's iso-values
func (s *Scene) Selector() *selector.ValueSelector {
	sel := selector.New()
	sel.SetValues(s.IsoValues)
	return sel
}

// buildVolume samples fn over the unit cube and commits it
func buildVolume(ctx context.Context, opts Options, fn volume.FieldFunc) (*volume.StructuredVolume, error) {
	dims := core.NewVec3i(opts.Resolution, opts.Resolution, opts.Resolution)
	spacing := volume.UnitCubeSpacing(dims)

	params := volume.DefaultStructuredParams()
	params.Dimensions = dims
	params.GridSpacing = spacing
	params.VoxelData = volume.GenerateVoxels(dims, core.Vec3f{}, spacing, fn)
	params.Filter = opts.Filter
	params.MacrocellWidth = opts.MacrocellWidth
	params.BuildWorkers = opts.BuildWorkers

	v := volume.NewStructuredVolumeFromParams(params)
	if err := v.Commit(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// defaultCamera looks at the unit cube from the front, slightly above
func defaultCamera() CameraConfig {
	return CameraConfig{
		Position: core.NewVec3f(1.8, 1.4, -1.6),
		LookAt:   core.NewVec3f(0.5, 0.5, 0.5),
		Up:       core.NewVec3f(0, 1, 0),
		VFov:     40,
	}
}
