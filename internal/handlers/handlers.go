package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime"
	"net/http"
	"sync"

	"github.com/dheeraj221b/cartoonize/internal/asset"
	"github.com/dheeraj221b/cartoonize/internal/model"
	"github.com/dheeraj221b/cartoonize/internal/tensor"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxUploadSize = 10 << 20

// Transformer is the part of the pipeline the HTTP surface drives.
type Transformer interface {
	Transform(img image.Image) (image.Image, error)
	InferTensor(input []float32) ([]float32, error)
	Metadata() model.Metadata
}

type TransformRequest struct {
	Tensor []float32 `json:"tensor"`
}

type TransformResponse struct {
	Tensor []float32 `json:"tensor"`
	Shape  []int64   `json:"shape"`
}

type Handler struct {
	// the engine behind the transformer reuses its tensors, so requests run one at a time
	mu          sync.Mutex
	transformer Transformer
}

func NewHandler(transformer Transformer) *Handler {
	return &Handler{
		transformer: transformer,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Transform runs a raw input tensor through the model. JSON bodies carry
// {"tensor": [...]}; application/octet-stream bodies are host-order float32.
func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	l := requestLogger(w)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	raw := isOctetStream(r)
	var input []float32
	if raw {
		input, err = tensor.FromBytes(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		var req TransformRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		input = req.Tensor
	}

	meta := h.transformer.Metadata()
	if len(input) != meta.InputLen() {
		http.Error(w, fmt.Sprintf("Expected %d values, got %d", meta.InputLen(), len(input)),
			http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	output, err := h.transformer.InferTensor(input)
	h.mu.Unlock()
	if err != nil {
		l.Error().Err(err).Msg("inference failed")
		http.Error(w, "Inference failed", statusFor(err))
		return
	}

	if raw {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(tensor.Bytes(output))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TransformResponse{Tensor: output, Shape: meta.OutputShape})
}

// TransformImage accepts a multipart upload in the "image" field and answers with the result as PNG.
func (h *Handler) TransformImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	l := requestLogger(w)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "No image file provided. Use 'image' as the form field name", http.StatusBadRequest)
		return
	}
	defer file.Close()

	l.Info().Str("filename", header.Filename).Int64("bytes", header.Size).Msg("received file")

	img, err := asset.Decode(file)
	if err != nil {
		http.Error(w, "Invalid image format. Supported: JPEG, PNG, GIF, WebP, BMP", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	result, err := h.transformer.Transform(img)
	h.mu.Unlock()
	if err != nil {
		l.Error().Err(err).Msg("transform failed")
		http.Error(w, "Transform failed", statusFor(err))
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		l.Error().Err(err).Msg("could not encode result")
		http.Error(w, "Failed to encode result", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func statusFor(err error) int {
	if errors.Is(err, model.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func isOctetStream(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/octet-stream"
}

func requestLogger(w http.ResponseWriter) zerolog.Logger {
	id, err := uuid.NewV4()
	if err != nil {
		return log.Logger
	}
	w.Header().Set("X-Request-Id", id.String())
	return log.With().Str("requestId", id.String()).Logger()
}
