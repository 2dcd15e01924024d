package pipeline

import (
	"github.com/dheeraj221b/cartoonize/internal/config"
	"github.com/dheeraj221b/cartoonize/internal/model"
	"github.com/dheeraj221b/cartoonize/internal/tensor"
)

// FromConfig loads the ONNX engine described by cfg and wires it into a pipeline.
// The returned close function releases the engine.
func FromConfig(cfg *config.Config) (*Pipeline, func(), error) {
	encoder, err := tensor.NewEncoder(cfg.Normalization, cfg.InputChannels)
	if err != nil {
		return nil, nil, err
	}
	decoder, err := tensor.NewDecoder(cfg.Normalization, cfg.OutputChannels)
	if err != nil {
		return nil, nil, err
	}

	engine, err := model.NewONNXEngine(cfg.ModelPath, cfg.LibraryPath, cfg.Metadata)
	if err != nil {
		return nil, nil, err
	}

	p, err := New(engine, encoder, decoder, cfg.ResizeFilter)
	if err != nil {
		engine.Close()
		return nil, nil, err
	}

	return p, engine.Close, nil
}
