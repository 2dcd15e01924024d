package model

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXEngine runs a model through ONNX Runtime with tensors allocated once at load time.
type ONNXEngine struct {
	session      *ort.AdvancedSession
	meta         Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewONNXEngine loads the model at modelPath. An empty libraryPath leaves the
// ONNX Runtime shared library lookup to its default.
func NewONNXEngine(modelPath, libraryPath string, meta Metadata) (*ONNXEngine, error) {
	if err := meta.Validate(); err != nil {
		return nil, loadErr(err)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, loadErr(fmt.Errorf("model file: %w", err))
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, loadErr(fmt.Errorf("failed to initialize ONNX environment: %w", err))
	}

	e := &ONNXEngine{meta: meta}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		e.Close()
		return nil, loadErr(fmt.Errorf("failed to create input tensor: %w", err))
	}
	e.inputTensor = inputTensor

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		e.Close()
		return nil, loadErr(fmt.Errorf("failed to create output tensor: %w", err))
	}
	e.outputTensor = outputTensor

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{meta.InputName}, []string{meta.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		e.Close()
		return nil, loadErr(fmt.Errorf("failed to create ONNX session: %w", err))
	}
	e.session = session

	log.Info().
		Str("model", modelPath).
		Ints64("inputShape", meta.InputShape).
		Ints64("outputShape", meta.OutputShape).
		Msg("model loaded")

	return e, nil
}

func loadErr(err error) error {
	return fmt.Errorf("%w: %w: %w", ErrUnavailable, ErrModelLoad, err)
}

func (e *ONNXEngine) Metadata() Metadata {
	return e.meta
}

// Infer is not safe for concurrent use; the session reuses its tensors.
func (e *ONNXEngine) Infer(input []float32) ([]float32, error) {
	if err := checkLen("input", len(input), e.meta.InputLen()); err != nil {
		return nil, err
	}

	copy(e.inputTensor.GetData(), input)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrUnavailable, ErrInference, err)
	}

	outputData := e.outputTensor.GetData()
	out := make([]float32, len(outputData))
	copy(out, outputData)

	return out, nil
}

func (e *ONNXEngine) Close() {
	if e.inputTensor != nil {
		e.inputTensor.Destroy()
		e.inputTensor = nil
	}
	if e.outputTensor != nil {
		e.outputTensor.Destroy()
		e.outputTensor = nil
	}
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	if ort.IsInitialized() {
		if err := ort.DestroyEnvironment(); err != nil {
			log.Warn().Err(err).Msg("could not destroy ONNX environment")
		}
	}
}
