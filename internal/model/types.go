package model

import (
	"errors"
	"fmt"

	"github.com/dheeraj221b/cartoonize/internal/tensor"
)

var (
	// ErrUnavailable covers every failure that leaves the run without an inference result.
	ErrUnavailable = errors.New("inference unavailable")
	ErrModelLoad   = errors.New("model load failed")
	ErrInference   = errors.New("inference failed")
)

// Metadata describes the tensors the model artifact was exported with.
// Both shapes are NHWC with a batch of one: [1, height, width, 3].
type Metadata struct {
	InputName   string  `json:"input_name"`
	OutputName  string  `json:"output_name"`
	InputShape  []int64 `json:"input_shape"`
	OutputShape []int64 `json:"output_shape"`
}

// NewMetadata builds image-to-image metadata where input and output share one size.
func NewMetadata(inputName, outputName string, width, height int) Metadata {
	shape := []int64{1, int64(height), int64(width), tensor.Channels}
	return Metadata{
		InputName:   inputName,
		OutputName:  outputName,
		InputShape:  shape,
		OutputShape: append([]int64(nil), shape...),
	}
}

func (m Metadata) Validate() error {
	if m.InputName == "" || m.OutputName == "" {
		return errors.New("input and output tensor names are required")
	}
	if err := validateShape("input", m.InputShape); err != nil {
		return err
	}
	return validateShape("output", m.OutputShape)
}

func validateShape(kind string, shape []int64) error {
	if len(shape) != 4 || shape[0] != 1 || shape[3] != tensor.Channels || shape[1] < 0 || shape[2] < 0 {
		return fmt.Errorf("%w: %s shape %v is not [1 H W %d]", tensor.ErrShapeMismatch, kind, shape, tensor.Channels)
	}
	return nil
}

// InputSize returns the width and height of the input image.
func (m Metadata) InputSize() (int, int) {
	return int(m.InputShape[2]), int(m.InputShape[1])
}

// OutputSize returns the width and height of the output image.
func (m Metadata) OutputSize() (int, int) {
	return int(m.OutputShape[2]), int(m.OutputShape[1])
}

func (m Metadata) InputLen() int {
	w, h := m.InputSize()
	return tensor.Len(w, h)
}

func (m Metadata) OutputLen() int {
	w, h := m.OutputSize()
	return tensor.Len(w, h)
}
