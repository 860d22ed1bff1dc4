// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// OrderYXZ applies heading about Y first, then pitch about X, then roll
// about Z.
const OrderYXZ = "YXZ"

// Rotation is a camera rotation as Euler angles in radians about the scene
// X (lateral), Y (vertical) and Z (depth) axes, applied in Order.
type Rotation struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Order string  `json:"order"`
}

// CameraRotation maps a device sample to the scene camera rotation:
// (pitch, heading, -roll) in order YXZ. The inverted roll and the axis
// order match the renderer's look-direction convention; changing either
// mirrors or tilts the overlay. Missing angles count as 0.
func CameraRotation(s Sample) Rotation {
	s = s.Sanitized()
	return Rotation{
		X:     s.Pitch * math.Pi / 180,
		Y:     s.Heading * math.Pi / 180,
		Z:     -s.Roll * math.Pi / 180,
		Order: OrderYXZ,
	}
}

// IsIdentity reports whether the rotation leaves every vector unchanged.
func (r Rotation) IsIdentity() bool {
	return r.X == 0 && r.Y == 0 && r.Z == 0
}

// Quat returns the rotation as a quaternion, q = qY * qX * qZ.
func (r Rotation) Quat() r3.Rotation {
	var qx, qy, qz quat.Number
	qx.Imag, qx.Real = math.Sincos(r.X / 2)
	qy.Jmag, qy.Real = math.Sincos(r.Y / 2)
	qz.Kmag, qz.Real = math.Sincos(r.Z / 2)

	return r3.Rotation(quat.Mul(qy, quat.Mul(qx, qz)))
}

// Apply rotates a scene vector.
func (r Rotation) Apply(v r3.Vec) r3.Vec {
	return r.Quat().Rotate(v)
}

// LookDirection is the unit vector the camera faces. An unrotated camera
// looks down -Z (north in the AR frame).
func (r Rotation) LookDirection() r3.Vec {
	return r.Apply(r3.Vec{Z: -1})
}
