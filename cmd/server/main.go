package main

import (
	"net/http"

	"github.com/dheeraj221b/cartoonize/internal/config"
	"github.com/dheeraj221b/cartoonize/internal/handlers"
	"github.com/dheeraj221b/cartoonize/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func main() {
	log.Info().Msg("starting cartoonize server...")

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	log.Info().Str("model", cfg.ModelPath).Msg("loading model")

	p, closeEngine, err := pipeline.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize model")
	}
	defer closeEngine()

	handler := handlers.NewHandler(p)

	http.HandleFunc("/health", enableCORS(handler.Health))
	http.HandleFunc("/transform", enableCORS(handler.Transform))
	http.HandleFunc("/transform/image", enableCORS(handler.TransformImage))

	log.Info().
		Str("port", cfg.Port).
		Strs("endpoints", []string{
			"GET /health - Health check",
			"POST /transform - Raw tensor transform",
			"POST /transform/image - Transform an uploaded image",
		}).
		Msg("server listening")

	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.Error().Err(err).Msg("server failed")
	}
}
