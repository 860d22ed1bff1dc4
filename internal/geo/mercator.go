// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"math"

	"github.com/wroge/wgs84"
)

// mercatorHalfExtent is half the width of the EPSG:3857 square in meters.
const mercatorHalfExtent = 20037508.342789244

// MaxMercatorLatitude is where the web map tiles stop.
const MaxMercatorLatitude = 85.05112878

var toWebMercator = wgs84.EPSG().Transform(4326, 3857)

// WebMercator converts p to EPSG:3857 meters, the coordinate system of the
// 2D tile map kept in sync with the globe. Latitude is clamped to the
// tiled range first.
func WebMercator(p Point) (x, y float64) {
	lat := math.Max(-MaxMercatorLatitude, math.Min(MaxMercatorLatitude, p.Latitude))
	x, y, _ = toWebMercator(p.Longitude, lat, 0)
	return x, y
}

// TileXY returns the slippy-map tile holding p at the given zoom level.
func TileXY(p Point, zoom int) (tx, ty int) {
	x, y := WebMercator(p)
	n := math.Exp2(float64(zoom))

	fx := (x + mercatorHalfExtent) / (2 * mercatorHalfExtent) * n
	fy := (mercatorHalfExtent - y) / (2 * mercatorHalfExtent) * n

	return clampTile(fx, n), clampTile(fy, n)
}

func clampTile(f, n float64) int {
	t := int(math.Floor(f))
	if t < 0 {
		return 0
	}
	if last := int(n) - 1; t > last {
		return last
	}
	return t
}
