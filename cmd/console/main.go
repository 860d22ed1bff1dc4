// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/geo_scene/internal/app"
	"github.com/relabs-tech/geo_scene/internal/config"
	"github.com/relabs-tech/geo_scene/internal/logging"
)

func main() {
	configPath := flag.String("config", "./geo_scene_config.txt", "path to configuration file")
	flag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		logging.Setup(os.Stderr, "info")
		log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}
	logging.Setup(os.Stdout, config.Get().LogLevel)

	log.Info().Msg("starting geo-scene (mock console)")

	if err := app.RunMockConsole(); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
