// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/geo_scene/internal/geo"
	"github.com/relabs-tech/geo_scene/internal/markers"
	"github.com/relabs-tech/geo_scene/internal/orientation"
)

// Vec is a scene-space vector with lower-case JSON keys.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func vecOf(v r3.Vec) Vec { return Vec(v) }

// Placement is one marker positioned in the AR frame.
type Placement struct {
	Marker         markers.Marker `json:"marker"`
	Position       Vec            `json:"position"`
	DistanceMeters float64        `json:"distance_m"`
	BearingDegrees float64        `json:"bearing_deg"`
}

// ARFrame is everything the renderer needs to draw one AR overlay frame.
type ARFrame struct {
	User       *geo.Point           `json:"user,omitempty"`
	Camera     orientation.Rotation `json:"camera"`
	Look       Vec                  `json:"look"`
	Placements []Placement          `json:"placements"`
}

// Nearest returns the closest placement.
func (f ARFrame) Nearest() (Placement, bool) {
	best := -1
	for i, p := range f.Placements {
		if best < 0 || p.DistanceMeters < f.Placements[best].DistanceMeters {
			best = i
		}
	}
	if best < 0 {
		return Placement{}, false
	}
	return f.Placements[best], true
}

// AR builds user-centred frames. Scale is scene units per meter.
type AR struct {
	Scale float64
}

// Frame places every marker relative to user and sets the camera from the
// orientation sample. With no user fix there are no placements; the camera
// still follows the device. User markers are not placed.
func (a AR) Frame(user *geo.Point, s orientation.Sample, ms []markers.Marker) ARFrame {
	cam := orientation.CameraRotation(s)
	frame := ARFrame{
		Camera:     cam,
		Look:       vecOf(cam.LookDirection()),
		Placements: []Placement{},
	}
	if user == nil {
		return frame
	}
	u := *user
	frame.User = &u

	for _, m := range ms {
		if m.Kind == markers.KindUser {
			continue
		}
		pos := geo.RelativePosition(u, m.Point, a.Scale)
		if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) {
			continue
		}
		frame.Placements = append(frame.Placements, Placement{
			Marker:         m,
			Position:       vecOf(pos),
			DistanceMeters: geo.DistanceMeters(u, m.Point),
			BearingDegrees: geo.BearingDegrees(u, m.Point),
		})
	}
	return frame
}
