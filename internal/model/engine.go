package model

import (
	"fmt"

	"github.com/dheeraj221b/cartoonize/internal/tensor"
)

// Engine maps one fixed-shape input tensor to one fixed-shape output tensor.
type Engine interface {
	// Infer runs the model on input, which must hold exactly Metadata().InputLen() floats.
	Infer(input []float32) ([]float32, error)
	// Metadata reports the shapes the engine was configured with.
	Metadata() Metadata
}

// EngineFunc adapts a plain function to the Engine interface.
type EngineFunc struct {
	Meta Metadata
	Fn   func(input []float32) ([]float32, error)
}

func (e EngineFunc) Metadata() Metadata {
	return e.Meta
}

func (e EngineFunc) Infer(input []float32) ([]float32, error) {
	if err := checkLen("input", len(input), e.Meta.InputLen()); err != nil {
		return nil, err
	}
	out, err := e.Fn(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrUnavailable, ErrInference, err)
	}
	if err := checkLen("output", len(out), e.Meta.OutputLen()); err != nil {
		return nil, err
	}
	return out, nil
}

func checkLen(kind string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s holds %d floats, model expects %d", tensor.ErrShapeMismatch, kind, got, want)
	}
	return nil
}
