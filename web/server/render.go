package server

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/zenazn/goji/web"

	"github.com/df07/go-volume-iterators/pkg/renderer"
)

// RenderResponse carries a finished render
type RenderResponse struct {
	Scene     string           `json:"scene"`
	ImageData string           `json:"imageData"` // Base64 encoded PNG
	Stats     Stats            `json:"stats"`
	Console   []ConsoleMessage `json:"console"`
	ElapsedMs int64            `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels   int     `json:"totalPixels"`
	PixelsHit     int     `json:"pixelsHit"`
	TotalHits     int     `json:"totalHits"`
	Batches       int     `json:"batches"`
	Lanes         int     `json:"lanes"`
	LaneOccupancy float64 `json:"laneOccupancy"`
	SkipRatio     float64 `json:"skipRatio"`
}

// handleRender renders the scene at the requested size and returns it as base64 PNG
func (s *Server) handleRender(c web.C, w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sc, err := s.getScene(r.Context(), c.URLParams["scene"])
	if err != nil {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}

	config, err := s.parseRenderConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: %v", err)
		return
	}

	console := NewWebLogger()
	rend, err := renderer.NewRenderer(sc, s.opts.Driver, config, console)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	frame, stats, err := rend.Render(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render failed: %v", err)
		return
	}

	imageData, err := imageToBase64PNG(frame.Image())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encoding image: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{
		Scene:     sc.Name,
		ImageData: imageData,
		Stats: Stats{
			TotalPixels:   stats.TotalPixels,
			PixelsHit:     stats.PixelsHit,
			TotalHits:     stats.TotalHits,
			Batches:       stats.Batches,
			Lanes:         rend.Lanes(),
			LaneOccupancy: stats.LaneOccupancy(rend.Lanes()),
			SkipRatio:     stats.Traversal.SkipRatio(),
		},
		Console:   console.Messages(),
		ElapsedMs: time.Since(start).Milliseconds(),
	})
}

// parseRenderConfig overrides the server render defaults from the query
func (s *Server) parseRenderConfig(r *http.Request) (renderer.Config, error) {
	query := r.URL.Query()
	config := s.opts.Render

	var err error
	if config.Width, err = parseIntParam(query, "width", config.Width, 1, 2000); err != nil {
		return config, err
	}
	if config.Height, err = parseIntParam(query, "height", config.Height, 1, 2000); err != nil {
		return config, err
	}
	if config.Lanes, err = parseIntParam(query, "lanes", config.Lanes, 0, 16); err != nil {
		return config, err
	}
	return config, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
