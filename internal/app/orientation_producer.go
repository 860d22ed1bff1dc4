// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/relabs-tech/geo_scene/internal/config"
	"github.com/relabs-tech/geo_scene/internal/logging"
	"github.com/relabs-tech/geo_scene/internal/orientation"
)

// RunOrientationProducer publishes device orientation samples to
// TOPIC_ORIENTATION every ORIENTATION_SAMPLE_INTERVAL. The source is the
// mock sweep, or a tilt estimate from raw accelerometer readings arriving
// on TOPIC_IMU_RAW.
func RunOrientationProducer() error {
	cfg := config.Get()
	log := logging.For("orientation_producer")

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDOrientation, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	var src orientation.Source
	switch cfg.OrientationSource {
	case "accel":
		accel := orientation.NewAccelSource()
		if err := subscribeJSON(client, cfg.TopicIMURaw, log, accel.Update); err != nil {
			return err
		}
		src = accel
		log.Info().Str("topic", cfg.TopicIMURaw).Msg("using accelerometer tilt for orientation")
	default:
		src = orientation.NewMockSource()
		log.Info().Msg("using mock orientation source")
	}

	ctx, stop := signalContext()
	defer stop()

	interval := time.Duration(cfg.OrientationSampleInterval) * time.Millisecond
	return publishSamples(ctx, src, interval, log, func(s orientation.Sample) error {
		return publishJSON(client, cfg.TopicOrientation, true, s)
	})
}

// publishSamples reads src on every tick and publishes the sample. Missing
// sensor data is skipped quietly; publish failures are logged.
func publishSamples(ctx context.Context, src orientation.Source, interval time.Duration, log zerolog.Logger, publish func(orientation.Sample) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("orientation producer shutting down")
			return nil
		case t := <-ticker.C:
			s, err := src.Next()
			if errors.Is(err, orientation.ErrNoAccel) {
				log.Debug().Msg("waiting for accelerometer data")
				continue
			}
			if err != nil {
				return fmt.Errorf("orientation source: %w", err)
			}

			s = s.Sanitized()
			if err := publish(s); err != nil {
				log.Error().Err(err).Msg("orientation publish failed")
				continue
			}
			log.Debug().
				Time("tick", t).
				Float64("heading", s.Heading).
				Float64("pitch", s.Pitch).
				Float64("roll", s.Roll).
				Msg("published orientation")
		}
	}
}
