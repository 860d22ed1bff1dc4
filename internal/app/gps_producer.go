// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/rs/zerolog"

	"github.com/relabs-tech/geo_scene/internal/config"
	"github.com/relabs-tech/geo_scene/internal/geo"
	"github.com/relabs-tech/geo_scene/internal/gps"
	"github.com/relabs-tech/geo_scene/internal/logging"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes every valid fix as a geo.Point to TOPIC_GEO_FIX (retained).
func RunGPSProducer() error {
	cfg := config.Get()
	log := logging.For("gps_producer")

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open GPS serial port %s: %w", cfg.GPSSerialPort, err)
	}
	defer port.Close()
	log.Info().Str("port", serialOpts.PortName).Uint("baud", serialOpts.BaudRate).Msg("GPS serial port opened")

	ctx, stop := signalContext()
	defer stop()

	return streamFixes(ctx, port, log, func(p geo.Point) error {
		return publishJSON(client, cfg.TopicGeoFix, true, p)
	})
}

// streamFixes feeds NMEA from r and hands each fix's point to publish.
// Closing r is how a blocked serial read gets released on shutdown.
func streamFixes(ctx context.Context, r io.ReadCloser, log zerolog.Logger, publish func(geo.Point) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		r.Close()
	}()

	err := gps.ReadFixes(ctx, r, func(f gps.Fix) {
		p := f.Point()
		if err := publish(p); err != nil {
			log.Error().Err(err).Msg("GPS publish failed")
			return
		}
		log.Debug().
			Float64("lat", f.Latitude).
			Float64("lon", f.Longitude).
			Bool("has_alt", f.HasAltitude).
			Int64("sats", f.Satellites).
			Msg("published GPS fix")
	})
	if ctx.Err() != nil {
		log.Info().Msg("GPS producer shutting down")
		return nil
	}
	return err
}
