// Package pipeline runs one image through encode, inference and decode.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/dheeraj221b/cartoonize/internal/asset"
	"github.com/dheeraj221b/cartoonize/internal/display"
	"github.com/dheeraj221b/cartoonize/internal/model"
	"github.com/dheeraj221b/cartoonize/internal/tensor"
	"github.com/gofrs/uuid/v5"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Pipeline struct {
	engine  model.Engine
	encoder *tensor.Encoder
	decoder *tensor.Decoder
	filter  resize.InterpolationFunction
}

func New(engine model.Engine, encoder *tensor.Encoder, decoder *tensor.Decoder,
	filter resize.InterpolationFunction) (*Pipeline, error) {
	if engine == nil || encoder == nil || decoder == nil {
		return nil, errors.New("pipeline needs an engine, an encoder and a decoder")
	}
	if err := engine.Metadata().Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{engine: engine, encoder: encoder, decoder: decoder, filter: filter}, nil
}

// Transform fits img to the model input, runs it and decodes the output at the model's output size.
func (p *Pipeline) Transform(img image.Image) (image.Image, error) {
	return p.transform(runLogger(), img)
}

// InferTensor runs an already encoded buffer through the engine.
func (p *Pipeline) InferTensor(input []float32) ([]float32, error) {
	return p.engine.Infer(input)
}

// Metadata reports the shapes of the underlying engine.
func (p *Pipeline) Metadata() model.Metadata {
	return p.engine.Metadata()
}

// Run loads the asset at path, shows it as the original, transforms it and shows the result.
func (p *Pipeline) Run(path string, sink display.Sink) error {
	l := runLogger().With().Str("asset", path).Logger()
	l.Info().Msg("starting run")

	src, err := asset.Load(path)
	if err != nil {
		l.Error().Err(err).Msg("could not load asset")
		return err
	}

	w, h := p.engine.Metadata().InputSize()
	original := asset.Fit(src, w, h, p.filter)
	if err := sink.Show(display.Original, original); err != nil {
		return fmt.Errorf("failed to show original: %w", err)
	}

	result, err := p.transform(l, original)
	if err != nil {
		l.Error().Err(err).Msg("transform failed")
		return err
	}

	if err := sink.Show(display.Result, result); err != nil {
		return fmt.Errorf("failed to show result: %w", err)
	}

	l.Info().Msg("run finished")

	return nil
}

func (p *Pipeline) transform(l zerolog.Logger, img image.Image) (image.Image, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	meta := p.engine.Metadata()

	start := time.Now()
	inW, inH := meta.InputSize()
	input, err := p.encoder.Encode(asset.Fit(img, inW, inH, p.filter))
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	encoded := time.Now()

	output, err := p.engine.Infer(input)
	if err != nil {
		return nil, err
	}
	inferred := time.Now()

	outW, outH := meta.OutputSize()
	result, err := p.decoder.Decode(output, outW, outH)
	if err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}

	l.Debug().
		Dur("encode", encoded.Sub(start)).
		Dur("infer", inferred.Sub(encoded)).
		Dur("decode", time.Since(inferred)).
		Msg("transformed image")

	return result, nil
}

func runLogger() zerolog.Logger {
	id, err := uuid.NewV4()
	if err != nil {
		return log.Logger
	}
	return log.With().Str("runId", id.String()).Logger()
}
