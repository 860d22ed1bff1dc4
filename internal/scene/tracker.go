// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package scene

import (
	"context"
	"sync"
	"time"

	"github.com/relabs-tech/geo_scene/internal/geo"
	"github.com/relabs-tech/geo_scene/internal/orientation"
)

// State is a point-in-time copy of everything the Tracker knows.
type State struct {
	Fix            *geo.Point         `json:"fix,omitempty"`
	FixAt          time.Time          `json:"fix_at,omitempty"`
	Orientation    orientation.Sample `json:"orientation"`
	HasOrientation bool               `json:"has_orientation"`
	BaroAltitude   *float64           `json:"baro_alt,omitempty"`
	Focus          *Focus             `json:"focus,omitempty"`
}

// Focus is the point the globe camera and map were last asked to centre
// on. Zoom 0 keeps the configured map zoom.
type Focus struct {
	Point geo.Point `json:"point"`
	Zoom  int       `json:"zoom,omitempty"`
}

// Tracker holds the latest user fix, orientation sample and barometric
// altitude. Every update replaces the previous value; nothing is queued.
type Tracker struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// SetFix records a new user position.
func (t *Tracker) SetFix(p geo.Point) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Fix = &p
	t.state.FixAt = t.now()
}

// SetOrientation records a new device orientation.
func (t *Tracker) SetOrientation(s orientation.Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Orientation = s.Sanitized()
	t.state.HasOrientation = true
}

// SetBaro records a barometric altitude in meters.
func (t *Tracker) SetBaro(alt float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.BaroAltitude = &alt
}

// SetFocus points the globe camera and map at f until the next call.
func (t *Tracker) SetFocus(f Focus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Focus = &f
}

// ClearFocus hands the globe camera back to the user fix.
func (t *Tracker) ClearFocus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Focus = nil
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.state
	if s.Fix != nil {
		fix := *s.Fix
		s.Fix = &fix
	}
	if s.BaroAltitude != nil {
		alt := *s.BaroAltitude
		s.BaroAltitude = &alt
	}
	if s.Focus != nil {
		f := *s.Focus
		s.Focus = &f
	}
	return s
}

// User returns the latest fix, with the barometric altitude filled in when
// the fix has none. ok is false before the first fix.
func (t *Tracker) User() (p geo.Point, ok bool) {
	s := t.Snapshot()
	if s.Fix == nil {
		return geo.Point{}, false
	}
	p = *s.Fix
	if !p.HasAltitude() && s.BaroAltitude != nil {
		p = p.WithAltitude(*s.BaroAltitude)
	}
	return p, true
}

// Run drains fixes and samples into the tracker until ctx is done or both
// channels are closed.
func (t *Tracker) Run(ctx context.Context, fixes <-chan geo.Point, samples <-chan orientation.Sample) error {
	for fixes != nil || samples != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p, ok := <-fixes:
			if !ok {
				fixes = nil
				continue
			}
			t.SetFix(p)
		case s, ok := <-samples:
			if !ok {
				samples = nil
				continue
			}
			t.SetOrientation(s)
		}
	}
	return nil
}
