// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/relabs-tech/geo_scene/internal/config"
	"github.com/relabs-tech/geo_scene/internal/geo"
	"github.com/relabs-tech/geo_scene/internal/markers"
	"github.com/relabs-tech/geo_scene/internal/orientation"
	"github.com/relabs-tech/geo_scene/internal/scene"
)

// RunMockConsole prints AR frames for the configured default position and
// a mock orientation sweep. No broker or hardware is needed.
func RunMockConsole() error {
	cfg := config.Get()
	user := geo.NewPointAlt(cfg.DefaultLat, cfg.DefaultLon, cfg.DefaultAlt)

	ctx, stop := signalContext()
	defer stop()

	return runMockConsole(ctx, os.Stdout, orientation.NewMockSource(), user,
		scene.AR{Scale: cfg.ARScale},
		time.Duration(cfg.OrientationSampleInterval)*time.Millisecond)
}

func runMockConsole(ctx context.Context, w io.Writer, src orientation.Source, user geo.Point, ar scene.AR, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	landmarks := markers.Landmarks()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s, err := src.Next()
			if err != nil {
				return err
			}
			printFrame(w, ar.Frame(&user, s, landmarks), s)
		}
	}
}
