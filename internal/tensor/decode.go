package tensor

import (
	"fmt"
	"image"
	"math"
)

// Decoder turns an NHWC float buffer back into an opaque image by applying
// the inverse of the encoder's normalization.
type Decoder struct {
	Norm  Normalization
	Order ChannelOrder
}

func NewDecoder(norm Normalization, order ChannelOrder) (*Decoder, error) {
	if err := norm.Validate(); err != nil {
		return nil, err
	}
	if err := order.validate(); err != nil {
		return nil, err
	}
	return &Decoder{Norm: norm, Order: order}, nil
}

// Decode builds a width x height image from buf. Channel values are rounded
// and clamped to [0, 255]; alpha is always 255.
func (d *Decoder) Decode(buf []float32, width, height int) (*image.NRGBA, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrShapeMismatch, width, height)
	}
	if len(buf) != Len(width, height) {
		return nil, fmt.Errorf("%w: buffer holds %d floats, %dx%d image needs %d",
			ErrShapeMismatch, len(buf), width, height, Len(width, height))
	}
	if err := d.Norm.Validate(); err != nil {
		return nil, err
	}
	if err := d.Order.validate(); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	i := 0
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			px := row[x*4 : x*4+4]
			for _, c := range d.Order {
				px[c] = toByte(buf[i], d.Norm.Mean[c], d.Norm.Scale[c])
				i++
			}
			px[3] = 0xff
		}
	}

	return img, nil
}

func toByte(v, mean, scale float32) uint8 {
	f := math.Round(float64(v)*float64(scale) + float64(mean))
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}
