// Command cartoonize runs the configured asset through the model once and
// writes the original and the result to the output directory.
package main

import (
	"os"

	"github.com/dheeraj221b/cartoonize/internal/config"
	"github.com/dheeraj221b/cartoonize/internal/display"
	"github.com/dheeraj221b/cartoonize/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(".")
	if err != nil {
		log.Error().Err(err).Msg("could not load config")
		return 1
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	sink, err := display.NewFileSink(cfg.OutputDir, cfg.OutputFormat)
	if err != nil {
		log.Error().Err(err).Msg("could not prepare output")
		return 1
	}

	p, closeEngine, err := pipeline.FromConfig(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize model")
		return 1
	}
	defer closeEngine()

	if err := p.Run(cfg.AssetPath, sink); err != nil {
		return 1
	}

	return 0
}
