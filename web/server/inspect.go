package server

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/zenazn/goji/web"

	"github.com/df07/go-volume-iterators/pkg/core"
	"github.com/df07/go-volume-iterators/pkg/iterator"
	"github.com/df07/go-volume-iterators/pkg/renderer"
	"github.com/df07/go-volume-iterators/pkg/scene"
	"github.com/df07/go-volume-iterators/pkg/simd"
)

// VolumeResponse summarizes a committed scene volume
type VolumeResponse struct {
	Scene          string     `json:"scene"`
	Dimensions     [3]int     `json:"dimensions"`
	BoundsMin      [3]float32 `json:"boundsMin"`
	BoundsMax      [3]float32 `json:"boundsMax"`
	ValueMin       float32    `json:"valueMin"`
	ValueMax       float32    `json:"valueMax"`
	Filter         string     `json:"filter"`
	MacrocellWidth int        `json:"macrocellWidth"`
	Macrocells     [3]int     `json:"macrocells"`
	AccelSize      string     `json:"accelSize"`
	IsoValues      []float32  `json:"isoValues"`
}

// IntervalInfo is one traversal interval of an inspected ray
type IntervalInfo struct {
	TStart        float32 `json:"tStart"`
	TEnd          float32 `json:"tEnd"`
	ValueMin      float32 `json:"valueMin"`
	ValueMax      float32 `json:"valueMax"`
	NominalDeltaT float32 `json:"nominalDeltaT"`
}

// HitInfo is one iso-surface crossing of an inspected ray
type HitInfo struct {
	T      float32    `json:"t"`
	Value  float32    `json:"value"` // driver sample at Point
	Point  [3]float32 `json:"point"`
	Normal [3]float32 `json:"normal"` // normalized gradient
}

// InspectResponse represents the JSON response for ray inspection
type InspectResponse struct {
	Scene     string         `json:"scene"`
	Origin    [3]float32     `json:"origin"`
	Direction [3]float32     `json:"direction"`
	Intervals []IntervalInfo `json:"intervals"`
	Hits      []HitInfo      `json:"hits"`
	Stats     iterator.Stats `json:"stats"`
}

func (s *Server) handleVolume(c web.C, w http.ResponseWriter, r *http.Request) {
	sc, err := s.getScene(r.Context(), c.URLParams["scene"])
	if err != nil {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}

	vol := sc.Volume
	grid := vol.Accelerator()
	bounds := s.opts.Driver.BoundingBox(vol)
	values := s.opts.Driver.ValueRange(vol)
	writeJSON(w, http.StatusOK, VolumeResponse{
		Scene:          sc.Name,
		Dimensions:     vol.Dimensions().Array(),
		BoundsMin:      bounds.Min.Array(),
		BoundsMax:      bounds.Max.Array(),
		ValueMin:       values.Lower,
		ValueMax:       values.Upper,
		Filter:         vol.Filter().String(),
		MacrocellWidth: grid.CellWidth(),
		Macrocells:     grid.CellDims().Array(),
		AccelSize:      humanize.Bytes(grid.SizeBytes()),
		IsoValues:      sc.IsoValues,
	})
}

// handleInspect traces one ray, given either as a pixel (x, y, width, height)
// through the scene camera or as ox..oz, dx..dz, and reports its intervals and hits
func (s *Server) handleInspect(c web.C, w http.ResponseWriter, r *http.Request) {
	sc, err := s.getScene(r.Context(), c.URLParams["scene"])
	if err != nil {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}

	ray, err := s.parseRay(r, sc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	resp, err := s.inspectRay(sc, ray)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) parseRay(r *http.Request, sc *scene.Scene) (core.Ray, error) {
	query := r.URL.Query()
	if query.Get("x") != "" || query.Get("y") != "" {
		width, err := parseIntParam(query, "width", s.opts.Render.Width, 1, 10000)
		if err != nil {
			return core.Ray{}, err
		}
		height, err := parseIntParam(query, "height", s.opts.Render.Height, 1, 10000)
		if err != nil {
			return core.Ray{}, err
		}
		x, err := parseIntParam(query, "x", 0, 0, width-1)
		if err != nil {
			return core.Ray{}, err
		}
		y, err := parseIntParam(query, "y", 0, 0, height-1)
		if err != nil {
			return core.Ray{}, err
		}
		camera := renderer.NewCamera(sc.Camera, float32(width)/float32(height))
		return camera.PixelRay(x, y, width, height), nil
	}

	var v [6]float32
	keys := [6]string{"ox", "oy", "oz", "dx", "dy", "dz"}
	defaults := [6]float32{0.5, 0.5, -1, 0, 0, 1}
	for i, key := range keys {
		f, err := parseFloatParam(query, key, defaults[i])
		if err != nil {
			return core.Ray{}, err
		}
		v[i] = f
	}
	direction := core.NewVec3f(v[3], v[4], v[5])
	if direction.Length() == 0 {
		return core.Ray{}, errZeroDirection
	}
	return core.NewRay(core.NewVec3f(v[0], v[1], v[2]), direction.Normalize()), nil
}

// inspectRay runs the interval and hit queries for a single ray at width 1
func (s *Server) inspectRay(sc *scene.Scene, ray core.Ray) (InspectResponse, error) {
	drv := s.opts.Driver
	valid := simd.NewMask(1, 1)
	result := make(simd.Mask, 1)
	origins, directions, tRanges := simd.NewVVec3f(1), simd.NewVVec3f(1), simd.NewVRange1f(1)
	origins.SetLane(0, ray.Origin)
	directions.SetLane(0, ray.Direction)
	tRanges.SetLane(0, ray.TRange)
	sel := sc.Selector()

	resp := InspectResponse{
		Scene:     sc.Name,
		Origin:    ray.Origin.Array(),
		Direction: ray.Direction.Array(),
		Intervals: []IntervalInfo{},
		Hits:      []HitInfo{},
	}

	intervals, err := drv.InitIntervalIterator(valid, sc.Volume, origins, directions, tRanges, sel)
	if err != nil {
		return resp, err
	}
	out := iterator.NewIntervalN(1)
	for {
		if err := drv.IterateInterval(valid, intervals, out, result); err != nil {
			return resp, err
		}
		if !result[0] {
			break
		}
		iv := out.Lane(0)
		resp.Intervals = append(resp.Intervals, IntervalInfo{
			TStart:        iv.TRange.Lower,
			TEnd:          iv.TRange.Upper,
			ValueMin:      iv.ValueRange.Lower,
			ValueMax:      iv.ValueRange.Upper,
			NominalDeltaT: iv.NominalDeltaT,
		})
	}

	hits, err := drv.InitHitIterator(valid, sc.Volume, origins, directions, tRanges, sel)
	if err != nil {
		return resp, err
	}
	hitOut := iterator.NewHitN(1)
	point := simd.NewVVec3f(1)
	sample := make([]float32, 1)
	gradient := simd.NewVVec3f(1)
	for {
		if err := drv.IterateHit(valid, hits, hitOut, result); err != nil {
			return resp, err
		}
		if !result[0] {
			break
		}
		h := hitOut.Lane(0)
		p := sc.Volume.BoundingBox().Clamp(ray.At(h.T))
		point.SetLane(0, p)
		if err := drv.ComputeSample(valid, sc.Volume, point, sample); err != nil {
			return resp, err
		}
		if err := drv.ComputeGradient(valid, sc.Volume, point, gradient); err != nil {
			return resp, err
		}
		resp.Hits = append(resp.Hits, HitInfo{
			T:      h.T,
			Value:  sample[0],
			Point:  p.Array(),
			Normal: gradient.Lane(0).Normalize().Array(),
		})
	}

	resp.Stats = intervals.Stats()
	resp.Stats.Add(hits.Stats())
	return resp, nil
}
