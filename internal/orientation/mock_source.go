// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock orientation source that slowly turns the
// heading while rocking pitch and roll.
func NewMockSource() Source {
	return &mockSource{start: time.Now(), now: time.Now}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	return Sample{
		Heading: math.Mod(elapsed*30, 360),
		Pitch:   15 * math.Cos(elapsed*0.7),
		Roll:    20 * math.Sin(elapsed),
	}, nil
}
