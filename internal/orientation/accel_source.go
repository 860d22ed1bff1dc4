// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"errors"
	"sync"
)

// ErrNoAccel is returned by an AccelSource before its first reading.
var ErrNoAccel = errors.New("orientation: no accelerometer reading yet")

// AccelReading is the accelerometer part of a raw IMU payload. Extra
// fields (gyro, magnetometer) in the same JSON object are ignored.
type AccelReading struct {
	Source string  `json:"source,omitempty"`
	Ax     float64 `json:"ax"`
	Ay     float64 `json:"ay"`
	Az     float64 `json:"az"`
}

// AccelSource turns the most recent accelerometer reading into a tilt
// sample. Readings are pushed with Update from whatever transport delivers
// them; older readings are overwritten, never queued.
type AccelSource struct {
	mu     sync.RWMutex
	latest AccelReading
	have   bool
}

// NewAccelSource returns an empty source.
func NewAccelSource() *AccelSource {
	return &AccelSource{}
}

// Update replaces the current reading.
func (s *AccelSource) Update(r AccelReading) {
	s.mu.Lock()
	s.latest = r
	s.have = true
	s.mu.Unlock()
}

// Next returns the tilt of the latest reading.
func (s *AccelSource) Next() (Sample, error) {
	s.mu.RLock()
	r, ok := s.latest, s.have
	s.mu.RUnlock()

	if !ok {
		return Sample{}, ErrNoAccel
	}
	return SampleFromAccel(r.Ax, r.Ay, r.Az), nil
}
