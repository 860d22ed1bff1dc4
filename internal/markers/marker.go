// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package markers

import (
	"sync"

	"github.com/google/uuid"

	"github.com/relabs-tech/geo_scene/internal/geo"
)

// Kind classifies a marker for rendering.
type Kind string

const (
	KindUser     Kind = "user"
	KindLandmark Kind = "landmark"
	KindCountry  Kind = "country"
	KindPin      Kind = "pin"
)

// Marker is a labelled geographic point shown in the AR overlay or on the globe.
type Marker struct {
	ID    string    `json:"id"`
	Point geo.Point `json:"point"`
	Label string    `json:"label"`
	Kind  Kind      `json:"kind"`
	Flag  string    `json:"flag,omitempty"` // flag image URL for countries
}

// Landmarks returns the fixed Paris landmark set used by the AR overlay.
func Landmarks() []Marker {
	return []Marker{
		{ID: "tour-eiffel", Point: geo.NewPointAlt(48.8584, 2.2945, 300), Label: "Tour Eiffel", Kind: KindLandmark},
		{ID: "arc-de-triomphe", Point: geo.NewPointAlt(48.8738, 2.2950, 50), Label: "Arc de Triomphe", Kind: KindLandmark},
		{ID: "sacre-coeur", Point: geo.NewPointAlt(48.8867, 2.3431, 130), Label: "Sacré-Cœur", Kind: KindLandmark},
		{ID: "notre-dame", Point: geo.NewPointAlt(48.8530, 2.3499, 90), Label: "Notre-Dame", Kind: KindLandmark},
	}
}

// DefaultFix is the position used when no geolocation is available.
func DefaultFix() geo.Point {
	return geo.NewPointAlt(48.8566, 2.3522, 35)
}

// NewPin creates a user-placed marker at lat/lon.
func NewPin(lat, lon float64) Marker {
	return Marker{
		ID:    uuid.NewString(),
		Point: geo.NewPoint(lat, lon),
		Label: "pin",
		Kind:  KindPin,
	}
}

// Set is a concurrency-safe marker collection. Snapshot order is insertion
// order; Upsert keeps the original position of an existing ID.
type Set struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Marker
}

// NewSet returns a set seeded with ms.
func NewSet(ms ...Marker) *Set {
	s := &Set{byID: make(map[string]Marker)}
	for _, m := range ms {
		s.Upsert(m)
	}
	return s
}

// Add inserts m and reports false if its ID is already present.
func (s *Set) Add(m Marker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[m.ID]; ok {
		return false
	}
	s.byID[m.ID] = m
	s.order = append(s.order, m.ID)
	return true
}

// Upsert inserts m or replaces the marker with the same ID.
func (s *Set) Upsert(m Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[m.ID]; !ok {
		s.order = append(s.order, m.ID)
	}
	s.byID[m.ID] = m
}

// Remove deletes the marker with id and reports whether it existed.
func (s *Set) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the marker with id.
func (s *Set) Get(id string) (Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	return m, ok
}

// Len returns the number of markers.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Snapshot returns a copy of the markers in insertion order.
func (s *Set) Snapshot() []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Marker, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
