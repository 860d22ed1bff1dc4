// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// Sample is the latest device orientation reading, in degrees, using the
// DeviceOrientation event layout: alpha is the compass heading, beta the
// front/back tilt and gamma the left/right tilt. A newer sample simply
// replaces an older one.
type Sample struct {
	Heading float64 `json:"alpha"` // [0, 360)
	Pitch   float64 `json:"beta"`  // [-180, 180]
	Roll    float64 `json:"gamma"` // [-90, 90]
}

// Source is anything that can provide samples over time: the mock sweep,
// an accelerometer, a replay.
type Source interface {
	Next() (Sample, error)
}

// Sanitized returns s with every non-finite angle replaced by 0. Sensors
// report partial data while they start up.
func (s Sample) Sanitized() Sample {
	return Sample{
		Heading: finiteOrZero(s.Heading),
		Pitch:   finiteOrZero(s.Pitch),
		Roll:    finiteOrZero(s.Roll),
	}
}

// SampleFromAccel estimates tilt from accelerometer data only. Heading is 0
// since there is no magnetometer fusion here.
//
//	pitch (beta)  = atan2(ay, az)
//	roll  (gamma) = atan2(-ax, sqrt(ay² + az²))
//
// Units do not matter, only the ratios between axes.
func SampleFromAccel(ax, ay, az float64) Sample {
	pitchRad := math.Atan2(ay, az)
	rollRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Sample{
		Heading: 0,
		Pitch:   pitchRad * 180.0 / math.Pi,
		Roll:    rollRad * 180.0 / math.Pi,
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
