// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package env

import "math"

// StandardSeaLevelPa is the ISA sea level pressure.
const StandardSeaLevelPa = 101325.0

// Sample represents a single barometer measurement.
type Sample struct {
	Source string `json:"source"` // sensor name, e.g. "phone" or "left"

	Temperature float64 `json:"temp_c"`      // °C
	Pressure    float64 `json:"pressure_pa"` // Pa
}

// AltitudeFromPressure converts a static pressure to an altitude in meters
// with the international barometric formula. seaLevelPa <= 0 falls back to
// the standard atmosphere. ok is false for a non-positive pressure.
func AltitudeFromPressure(pressurePa, seaLevelPa float64) (alt float64, ok bool) {
	if pressurePa <= 0 || math.IsNaN(pressurePa) {
		return 0, false
	}
	if seaLevelPa <= 0 || math.IsNaN(seaLevelPa) {
		seaLevelPa = StandardSeaLevelPa
	}
	return 44330.0 * (1 - math.Pow(pressurePa/seaLevelPa, 1/5.255)), true
}

// Altitude is AltitudeFromPressure applied to the sample.
func (s Sample) Altitude(seaLevelPa float64) (float64, bool) {
	return AltitudeFromPressure(s.Pressure, seaLevelPa)
}
