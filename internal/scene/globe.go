// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/geo_scene/internal/geo"
	"github.com/relabs-tech/geo_scene/internal/markers"
)

// GlobePlacement is a marker positioned on (or just above) the globe.
type GlobePlacement struct {
	Marker   markers.Marker `json:"marker"`
	Position Vec            `json:"position"`
}

// GlobeCamera looks from Position at the globe centre.
type GlobeCamera struct {
	Position Vec `json:"position"`
	Target   Vec `json:"target"`
}

// MapView is the 2D map state kept in sync with the globe.
type MapView struct {
	Center    geo.Point `json:"center"`
	Zoom      int       `json:"zoom"`
	MercatorX float64   `json:"mercator_x"`
	MercatorY float64   `json:"mercator_y"`
	TileX     int       `json:"tile_x"`
	TileY     int       `json:"tile_y"`
}

// GlobeFrame is one rendered globe state.
type GlobeFrame struct {
	Radius     float64          `json:"radius"`
	Spin       float64          `json:"spin"`
	Placements []GlobePlacement `json:"placements"`
	Camera     *GlobeCamera     `json:"camera,omitempty"`
	Map        *MapView         `json:"map,omitempty"`
}

// Globe holds the globe scene settings. Markers sit MarkerLift above the
// surface; the globe turns SpinPerFrame radians about +Y each frame.
type Globe struct {
	Radius         float64
	MarkerLift     float64
	CameraDistance float64
	SpinPerFrame   float64
	MapSync        bool
	MapZoom        int
}

// Place projects markers in the globe's local frame.
func (g Globe) Place(ms []markers.Marker) []GlobePlacement {
	out := make([]GlobePlacement, 0, len(ms))
	r := g.Radius + g.MarkerLift
	for _, m := range ms {
		out = append(out, GlobePlacement{Marker: m, Position: vecOf(geo.Project(m.Point, r))})
	}
	return out
}

// Spin returns the accumulated rotation after frames, wrapped to [0, 2π).
func (g Globe) Spin(frames int) float64 {
	a := math.Mod(float64(frames)*g.SpinPerFrame, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// cameraDistance falls back to three radii when unset.
func (g Globe) cameraDistance() float64 {
	if g.CameraDistance > 0 {
		return g.CameraDistance
	}
	return 3 * g.Radius
}

// Focus places the camera above p, taking the globe's current spin into
// account, looking at the centre.
func (g Globe) Focus(p geo.Point, spin float64) GlobeCamera {
	local := geo.Project(p, 1)
	world := r3.NewRotation(spin, r3.Vec{Y: 1}).Rotate(local)
	return GlobeCamera{
		Position: vecOf(r3.Scale(g.cameraDistance(), r3.Unit(world))),
	}
}

// Frame assembles the globe state. focus is optional. The map view is only
// present when MapSync is on; it centres on focus, or on lat 0 / lon 0.
func (g Globe) Frame(ms []markers.Marker, spin float64, focus *geo.Point) GlobeFrame {
	frame := GlobeFrame{
		Radius:     g.Radius,
		Spin:       spin,
		Placements: g.Place(ms),
	}
	if focus != nil {
		cam := g.Focus(*focus, spin)
		frame.Camera = &cam
	}
	if g.MapSync {
		center := geo.NewPoint(0, 0)
		if focus != nil {
			center = geo.NewPoint(focus.Latitude, focus.Longitude)
		}
		mx, my := geo.WebMercator(center)
		tx, ty := geo.TileXY(center, g.MapZoom)
		frame.Map = &MapView{
			Center:    center,
			Zoom:      g.MapZoom,
			MercatorX: mx,
			MercatorY: my,
			TileX:     tx,
			TileY:     ty,
		}
	}
	return frame
}
