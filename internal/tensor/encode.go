package tensor

import (
	"fmt"
	"image"
	"image/color"
)

// Encoder turns an image into an NHWC float buffer.
type Encoder struct {
	Norm  Normalization
	Order ChannelOrder
}

func NewEncoder(norm Normalization, order ChannelOrder) (*Encoder, error) {
	if err := norm.Validate(); err != nil {
		return nil, err
	}
	if err := order.validate(); err != nil {
		return nil, err
	}
	return &Encoder{Norm: norm, Order: order}, nil
}

// Encode allocates a buffer of exactly Len(w, h) floats and fills it from img.
func (e *Encoder) Encode(img image.Image) ([]float32, error) {
	if img == nil {
		return nil, errNilImage
	}
	b := img.Bounds()
	buf := make([]float32, Len(b.Dx(), b.Dy()))
	if err := e.EncodeInto(buf, img); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeInto writes img into a caller-owned buffer. Rows are outermost, then
// columns, then the three channels in e.Order.
func (e *Encoder) EncodeInto(dst []float32, img image.Image) error {
	if img == nil {
		return errNilImage
	}
	if err := e.Norm.Validate(); err != nil {
		return err
	}
	if err := e.Order.validate(); err != nil {
		return err
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if len(dst) != Len(width, height) {
		return fmt.Errorf("%w: buffer holds %d floats, %dx%d image needs %d",
			ErrShapeMismatch, len(dst), width, height, Len(width, height))
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			values := [Channels]float32{float32(px.R), float32(px.G), float32(px.B)}
			for _, c := range e.Order {
				dst[i] = (values[c] - e.Norm.Mean[c]) / e.Norm.Scale[c]
				i++
			}
		}
	}

	return nil
}
