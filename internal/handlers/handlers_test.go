package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dheeraj221b/cartoonize/internal/model"
	"github.com/dheeraj221b/cartoonize/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockTransformer struct {
	meta   model.Metadata
	err    error
	result image.Image
	input  []float32
}

func (m *MockTransformer) Transform(img image.Image) (image.Image, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return img, nil
}

func (m *MockTransformer) InferTensor(input []float32) ([]float32, error) {
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	out := make([]float32, len(input))
	for i, v := range input {
		out[i] = -v
	}
	return out, nil
}

func (m *MockTransformer) Metadata() model.Metadata {
	return m.meta
}

func newMock() *MockTransformer {
	return &MockTransformer{meta: model.NewMetadata("input", "output", 2, 1)}
}

func TestHealth(t *testing.T) {
	h := NewHandler(newMock())
	rec := httptest.NewRecorder()

	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestTransformJSON(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		err        error
		wantStatus int
	}{
		{name: "success", method: http.MethodPost, body: `{"tensor":[0,0.5,1,-1,-0.5,0]}`, wantStatus: http.StatusOK},
		{name: "wrong method", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
		{name: "invalid json", method: http.MethodPost, body: `{tensor`, wantStatus: http.StatusBadRequest},
		{name: "wrong length", method: http.MethodPost, body: `{"tensor":[0,1]}`, wantStatus: http.StatusBadRequest},
		{
			name:       "engine unavailable",
			method:     http.MethodPost,
			body:       `{"tensor":[0,0,0,0,0,0]}`,
			err:        fmt.Errorf("%w: %w", model.ErrUnavailable, model.ErrInference),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "other failure",
			method:     http.MethodPost,
			body:       `{"tensor":[0,0,0,0,0,0]}`,
			err:        errors.New("mock error"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newMock()
			m.err = tc.err
			h := NewHandler(m)

			req := httptest.NewRequest(tc.method, "/transform", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			h.Transform(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus != http.StatusOK {
				return
			}

			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
			var resp TransformResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, []float32{0, -0.5, -1, 1, 0.5, 0}, resp.Tensor)
			assert.Equal(t, []int64{1, 1, 2, 3}, resp.Shape)
		})
	}
}

func TestTransformOctetStream(t *testing.T) {
	m := newMock()
	h := NewHandler(m)

	input := []float32{0.25, -0.25, 1, -1, 0, 0.75}
	req := httptest.NewRequest(http.MethodPost, "/transform", bytes.NewReader(tensor.Bytes(input)))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()

	h.Transform(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, input, m.input)

	out, err := tensor.FromBytes(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []float32{-0.25, 0.25, -1, 1, 0, -0.75}, out)

	req = httptest.NewRequest(http.MethodPost, "/transform", bytes.NewReader([]byte{1, 2, 3}))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec = httptest.NewRecorder()
	h.Transform(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "face.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTransformImage(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		data       []byte
		err        error
		wantStatus int
	}{
		{name: "success", field: "image", data: pngBytes(t), wantStatus: http.StatusOK},
		{name: "wrong field", field: "file", data: pngBytes(t), wantStatus: http.StatusBadRequest},
		{name: "not an image", field: "image", data: []byte("hello"), wantStatus: http.StatusBadRequest},
		{
			name:       "inference failed",
			field:      "image",
			data:       pngBytes(t),
			err:        fmt.Errorf("%w: %w", model.ErrUnavailable, model.ErrInference),
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newMock()
			m.err = tc.err
			h := NewHandler(m)

			body, contentType := multipartBody(t, tc.field, tc.data)
			req := httptest.NewRequest(http.MethodPost, "/transform/image", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			h.TransformImage(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus != http.StatusOK {
				return
			}

			assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
			out, err := png.Decode(rec.Body)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 2, 1), out.Bounds())
			r, _, _, _ := out.At(0, 0).RGBA()
			assert.Equal(t, uint32(0xffff), r)
		})
	}
}

func TestTransformImageMethodNotAllowed(t *testing.T) {
	h := NewHandler(newMock())
	rec := httptest.NewRecorder()

	h.TransformImage(rec, httptest.NewRequest(http.MethodGet, "/transform/image", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
