// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertVec(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "z")
}

func TestCameraRotation_ZeroIsIdentity(t *testing.T) {
	r := CameraRotation(Sample{})

	assert.True(t, r.IsIdentity())
	assert.Equal(t, OrderYXZ, r.Order)
	assertVec(t, r3.Vec{X: 1, Y: 2, Z: 3}, r.Apply(r3.Vec{X: 1, Y: 2, Z: 3}))
}

func TestCameraRotation_AxisMapping(t *testing.T) {
	r := CameraRotation(Sample{Heading: 90, Pitch: 45, Roll: 30})

	assert.InDelta(t, math.Pi/4, r.X, 1e-12)
	assert.InDelta(t, math.Pi/2, r.Y, 1e-12)
	assert.InDelta(t, -math.Pi/6, r.Z, 1e-12)
}

func TestCameraRotation_MissingFieldsAreZero(t *testing.T) {
	r := CameraRotation(Sample{Heading: math.NaN(), Pitch: 10, Roll: math.Inf(-1)})

	assert.Equal(t, 0.0, r.Y)
	assert.Equal(t, 0.0, r.Z)
	assert.InDelta(t, 10*math.Pi/180, r.X, 1e-12)

	var s Sample
	require.NoError(t, json.Unmarshal([]byte(`{"beta": 20}`), &s))
	r = CameraRotation(s)
	assert.Equal(t, 0.0, r.Y)
	assert.InDelta(t, 20*math.Pi/180, r.X, 1e-12)
}

func TestRotation_LookDirection(t *testing.T) {
	tests := []struct {
		name string
		s    Sample
		want r3.Vec
	}{
		{"rest looks north", Sample{}, r3.Vec{Z: -1}},
		{"heading 90 turns counterclockwise", Sample{Heading: 90}, r3.Vec{X: -1}},
		{"heading 180 looks south", Sample{Heading: 180}, r3.Vec{Z: 1}},
		{"pitch 90 looks up", Sample{Pitch: 90}, r3.Vec{Y: 1}},
		{"roll keeps the look axis", Sample{Roll: 40}, r3.Vec{Z: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVec(t, tt.want, CameraRotation(tt.s).LookDirection())
		})
	}
}

func TestRotation_OrderHeadingBeforePitch(t *testing.T) {
	// Heading 90 then pitch 90: pitch is applied in the turned frame, so the
	// camera still ends up looking straight up.
	r := CameraRotation(Sample{Heading: 90, Pitch: 90})
	assertVec(t, r3.Vec{Y: 1}, r.LookDirection())

	// The camera's right-hand axis follows heading only.
	assertVec(t, r3.Vec{Z: -1}, r.Apply(r3.Vec{X: 1}))
}

func TestRotation_RollIsInverted(t *testing.T) {
	// The up vector leans right (+X) for a positive device roll.
	up := CameraRotation(Sample{Roll: 90}).Apply(r3.Vec{Y: 1})
	assertVec(t, r3.Vec{X: 1}, up)
}

func TestRotation_PreservesLength(t *testing.T) {
	r := CameraRotation(Sample{Heading: 123, Pitch: -47, Roll: 12})
	v := r3.Vec{X: 3, Y: -4, Z: 12}
	assert.InDelta(t, r3.Norm(v), r3.Norm(r.Apply(v)), 1e-9)
}

func TestSampleFromAccel(t *testing.T) {
	tests := []struct {
		name       string
		ax, ay, az float64
		pitch      float64
		roll       float64
	}{
		{"flat", 0, 0, 1, 0, 0},
		{"nose up", 0, 1, 0, 90, 0},
		{"upside down", 0, 0, -1, 180, 0},
		{"left side down", 1, 0, 0, 0, -90},
		{"raw counts", 0, 8192, 8192, 45, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SampleFromAccel(tt.ax, tt.ay, tt.az)
			assert.Equal(t, 0.0, s.Heading)
			assert.InDelta(t, tt.pitch, s.Pitch, 1e-9)
			assert.InDelta(t, tt.roll, s.Roll, 1e-9)
		})
	}
}

func TestAccelSource(t *testing.T) {
	src := NewAccelSource()

	_, err := src.Next()
	require.ErrorIs(t, err, ErrNoAccel)

	var r AccelReading
	require.NoError(t, json.Unmarshal([]byte(`{"source":"left","ax":0,"ay":100,"az":100,"gx":5,"mx":7}`), &r))
	src.Update(r)

	s, err := src.Next()
	require.NoError(t, err)
	assert.InDelta(t, 45, s.Pitch, 1e-9)

	src.Update(AccelReading{Az: 1})
	s, err = src.Next()
	require.NoError(t, err)
	assert.InDelta(t, 0, s.Pitch, 1e-9)
}

func TestMockSource(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(13 * time.Second)
	src := &mockSource{start: start, now: func() time.Time { return now }}

	s, err := src.Next()
	require.NoError(t, err)
	assert.InDelta(t, math.Mod(13*30, 360), s.Heading, 1e-9)
	assert.GreaterOrEqual(t, s.Heading, 0.0)
	assert.Less(t, s.Heading, 360.0)
	assert.LessOrEqual(t, math.Abs(s.Pitch), 15.0)
	assert.LessOrEqual(t, math.Abs(s.Roll), 20.0)
}
