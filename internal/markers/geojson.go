// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package markers

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// FeatureCollection encodes markers as a GeoJSON FeatureCollection. Points
// are [lon, lat] or [lon, lat, alt] when the marker has an altitude.
func FeatureCollection(ms []Marker) ([]byte, error) {
	fc := make(geom.GeoJSONFeatureCollection, 0, len(ms))
	for _, m := range ms {
		coords := geom.Coordinates{
			XY:   geom.XY{X: m.Point.Longitude, Y: m.Point.Latitude},
			Type: geom.DimXY,
		}
		if m.Point.HasAltitude() {
			coords.Z = m.Point.Alt()
			coords.Type = geom.DimXYZ
		}
		pt := geom.NewPoint(coords)

		props := map[string]interface{}{
			"label": m.Label,
			"kind":  string(m.Kind),
		}
		if m.Flag != "" {
			props["flag"] = m.Flag
		}
		fc = append(fc, geom.GeoJSONFeature{
			Geometry:   pt.AsGeometry(),
			ID:         m.ID,
			Properties: props,
		})
	}

	out, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode markers: %w", err)
	}
	return out, nil
}
