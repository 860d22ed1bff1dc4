// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"

	"github.com/relabs-tech/geo_scene/internal/orientation"
	"github.com/relabs-tech/geo_scene/internal/scene"
)

// printFrame writes a human-readable AR frame: the user fix, the device
// angles and one line per placed marker.
func printFrame(w io.Writer, f scene.ARFrame, s orientation.Sample) {
	s = s.Sanitized()
	if f.User == nil {
		fmt.Fprintf(w, "[FIX ]  waiting  HDG=%6.2f  PITCH=%6.2f  ROLL=%6.2f\n", s.Heading, s.Pitch, s.Roll)
		return
	}

	alt := "--"
	if f.User.HasAltitude() {
		alt = fmt.Sprintf("%.1fm", f.User.Alt())
	}
	fmt.Fprintf(w, "[FIX ]  lat=%.6f lon=%.6f alt=%s  HDG=%6.2f  PITCH=%6.2f  ROLL=%6.2f\n",
		f.User.Latitude, f.User.Longitude, alt, s.Heading, s.Pitch, s.Roll)
	for _, p := range f.Placements {
		fmt.Fprintf(w, "  %-16s %9.1fm  %6.1f°  x=%9.2f y=%8.2f z=%9.2f\n",
			p.Marker.Label, p.DistanceMeters, p.BearingDegrees,
			p.Position.X, p.Position.Y, p.Position.Z)
	}
}
