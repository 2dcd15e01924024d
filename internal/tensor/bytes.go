package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

const floatSize = 4

// Bytes serializes buf as float32 values in host byte order with no padding.
func Bytes(buf []float32) []byte {
	out := make([]byte, len(buf)*floatSize)
	for i, v := range buf {
		binary.NativeEndian.PutUint32(out[i*floatSize:], math.Float32bits(v))
	}
	return out
}

// FromBytes is the inverse of Bytes.
func FromBytes(data []byte) ([]float32, error) {
	if len(data)%floatSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of float32 values", ErrShapeMismatch, len(data))
	}
	buf := make([]float32, len(data)/floatSize)
	for i := range buf {
		buf[i] = math.Float32frombits(binary.NativeEndian.Uint32(data[i*floatSize:]))
	}
	return buf, nil
}
