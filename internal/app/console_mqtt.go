// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/relabs-tech/geo_scene/internal/config"
	"github.com/relabs-tech/geo_scene/internal/geo"
	"github.com/relabs-tech/geo_scene/internal/logging"
	"github.com/relabs-tech/geo_scene/internal/markers"
	"github.com/relabs-tech/geo_scene/internal/orientation"
	"github.com/relabs-tech/geo_scene/internal/scene"
)

// RunConsoleMQTT subscribes to the fix and orientation topics and prints
// the AR placements of the landmark set each time a fix arrives.
func RunConsoleMQTT() error {
	cfg := config.Get()
	log := logging.For("console")

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, log)
	if err != nil {
		return err
	}

	cs := &consoleScene{
		w:         os.Stdout,
		log:       log,
		tracker:   scene.NewTracker(),
		ar:        scene.AR{Scale: cfg.ARScale},
		landmarks: markers.Landmarks(),
	}

	if err := subscribeJSON(client, cfg.TopicOrientation, log, func(s orientation.Sample) {
		cs.tracker.SetOrientation(s)
		fmt.Printf("[ORI ]  HDG=%6.2f  PITCH=%6.2f  ROLL=%6.2f\n", s.Heading, s.Pitch, s.Roll)
	}); err != nil {
		return err
	}

	if err := subscribeJSON(client, cfg.TopicGeoFix, log, func(p geo.Point) {
		cs.onFix(p)
	}); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	<-ctx.Done()

	log.Info().Msg("console shutting down")
	client.Disconnect(250)
	return nil
}

// consoleScene prints the landmark placements for each incoming fix.
type consoleScene struct {
	w         io.Writer
	log       zerolog.Logger
	tracker   *scene.Tracker
	ar        scene.AR
	landmarks []markers.Marker
}

// onFix records p and prints a frame. Out-of-range fixes are dropped and
// report false.
func (c *consoleScene) onFix(p geo.Point) bool {
	if !p.Valid() {
		c.log.Warn().Float64("lat", p.Latitude).Float64("lon", p.Longitude).Msg("ignoring out-of-range fix")
		return false
	}
	c.tracker.SetFix(p)
	user, _ := c.tracker.User()
	s := c.tracker.Snapshot().Orientation
	printFrame(c.w, c.ar.Frame(&user, s, c.landmarks), s)
	return true
}
