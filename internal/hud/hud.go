// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package hud renders small monochrome status images for the AR scene:
// a text panel sized for a 128x64 OLED and a north-up radar.
package hud

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/relabs-tech/geo_scene/internal/orientation"
	"github.com/relabs-tech/geo_scene/internal/scene"
)

const (
	Width  = 128
	Height = 64

	// 7x13 glyphs, so a panel line holds this many characters.
	lineChars = Width / 7
)

var on = color.Gray{Y: 255}

func newPanel(w, h int) (*image.Gray, *font.Drawer) {
	img := image.NewGray(image.Rect(0, 0, w, h))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(on),
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, x, y int, s string) {
	if len([]rune(s)) > lineChars {
		s = string([]rune(s)[:lineChars])
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

// Render draws the status panel: position, altitude, device angles and the
// nearest placed marker. Before the first fix it shows a waiting screen.
func Render(frame scene.ARFrame, sample orientation.Sample) *image.Gray {
	img, drawer := newPanel(Width, Height)

	if frame.User == nil {
		drawLine(drawer, 0, 26, "GPS Position")
		drawLine(drawer, 0, 39, "Waiting...")
		return img
	}

	u := *frame.User
	latDir := "N"
	lat := u.Latitude
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}
	lonDir := "E"
	lon := u.Longitude
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}
	drawLine(drawer, 0, 13, fmt.Sprintf("%.4f%s %.4f%s", lat, latDir, lon, lonDir))

	if u.HasAltitude() {
		drawLine(drawer, 0, 26, fmt.Sprintf("Alt: %.0fm", u.Alt()))
	} else {
		drawLine(drawer, 0, 26, "Alt: --")
	}

	s := sample.Sanitized()
	drawLine(drawer, 0, 39, fmt.Sprintf("H%3.0f P%4.0f R%4.0f", s.Heading, s.Pitch, s.Roll))

	if p, ok := frame.Nearest(); ok {
		drawLine(drawer, 0, 52, fmt.Sprintf("%s %s", formatDistance(p.DistanceMeters), p.Marker.Label))
	}
	return img
}

func formatDistance(m float64) string {
	if m >= 1000 {
		return fmt.Sprintf("%.1fkm", m/1000)
	}
	return fmt.Sprintf("%.0fm", m)
}

// Radar draws a north-up top-down view of size x size pixels covering
// rangeMeters from the user to the edge. Markers beyond the range are
// pinned to the border. The short line from the centre is the camera's
// look direction.
func Radar(frame scene.ARFrame, size int, rangeMeters float64) *image.Gray {
	img, drawer := newPanel(size, size)
	c := size / 2
	half := float64(size/2 - 2)

	// Border and centre.
	for i := 0; i < size; i++ {
		img.SetGray(i, 0, on)
		img.SetGray(i, size-1, on)
		img.SetGray(0, i, on)
		img.SetGray(size-1, i, on)
	}
	dot(img, c, c)

	if frame.User == nil || rangeMeters <= 0 {
		return img
	}

	look := frame.Look
	if n := math.Hypot(look.X, look.Z); n > 1e-9 {
		line(img, c, c, c+int(math.Round(look.X/n*half/3)), c+int(math.Round(look.Z/n*half/3)))
	}

	for _, p := range frame.Placements {
		r := math.Min(p.DistanceMeters/rangeMeters, 1) * half
		b := p.BearingDegrees * math.Pi / 180
		x := c + int(math.Round(math.Sin(b)*r))
		y := c - int(math.Round(math.Cos(b)*r))
		dot(img, x, y)

		label := []rune(p.Marker.Label)
		if len(label) > 3 {
			label = label[:3]
		}
		drawer.Dot = fixed.P(x+3, y+4)
		drawer.DrawString(string(label))
	}
	return img
}

// dot lights a 3x3 block centred on x, y.
func dot(img *image.Gray, x, y int) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			img.SetGray(x+dx, y+dy, on)
		}
	}
}

func line(img *image.Gray, x0, y0, x1, y1 int) {
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		img.SetGray(x0, y0, on)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		img.SetGray(x0+int(math.Round(t*float64(x1-x0))), y0+int(math.Round(t*float64(y1-y0))), on)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
