package tensor

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Channels is the number of colour channels carried per pixel in a tensor buffer.
const Channels = 3

var (
	ErrShapeMismatch        = errors.New("tensor shape mismatch")
	ErrInvalidNormalization = errors.New("invalid normalization")
	ErrInvalidChannelOrder  = errors.New("invalid channel order")
	errNilImage             = errors.New("nil image")
)

type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// ChannelOrder lists which colour channel is stored at each of the three
// consecutive float slots of a pixel.
type ChannelOrder [Channels]Channel

var (
	RGB = ChannelOrder{Red, Green, Blue}
	BGR = ChannelOrder{Blue, Green, Red}
)

// ParseChannelOrder accepts a permutation of "RGB" in any case, e.g. "bgr" or "BRG".
func ParseChannelOrder(s string) (ChannelOrder, error) {
	var order ChannelOrder
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != Channels {
		return order, fmt.Errorf("%w: %q", ErrInvalidChannelOrder, s)
	}

	seen := map[Channel]bool{}
	for i, r := range s {
		var c Channel
		switch r {
		case 'R':
			c = Red
		case 'G':
			c = Green
		case 'B':
			c = Blue
		default:
			return order, fmt.Errorf("%w: %q", ErrInvalidChannelOrder, s)
		}
		if seen[c] {
			return order, fmt.Errorf("%w: %q repeats %s", ErrInvalidChannelOrder, s, c)
		}
		seen[c] = true
		order[i] = c
	}

	return order, nil
}

func (o ChannelOrder) String() string {
	return o[0].String() + o[1].String() + o[2].String()
}

func (o ChannelOrder) validate() error {
	var seen [Channels]bool
	for _, c := range o {
		if c < Red || c > Blue || seen[c] {
			return fmt.Errorf("%w: %v", ErrInvalidChannelOrder, [Channels]Channel(o))
		}
		seen[c] = true
	}
	return nil
}

// Normalization holds the per-channel affine parameters, indexed by Channel
// (Red, Green, Blue) regardless of the buffer's channel order.
type Normalization struct {
	Mean  [Channels]float32
	Scale [Channels]float32
}

// SymmetricUnit maps 8-bit values onto [-1, 1].
var SymmetricUnit = Normalization{
	Mean:  [Channels]float32{127.5, 127.5, 127.5},
	Scale: [Channels]float32{127.5, 127.5, 127.5},
}

// Validate rejects zero, NaN and infinite scales and non-finite means.
func (n Normalization) Validate() error {
	for c := Red; c <= Blue; c++ {
		s := float64(n.Scale[c])
		if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: scale for %s is %v", ErrInvalidNormalization, c, n.Scale[c])
		}
		m := float64(n.Mean[c])
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("%w: mean for %s is %v", ErrInvalidNormalization, c, n.Mean[c])
		}
	}
	return nil
}

// Len returns the number of floats a width x height buffer holds.
func Len(width, height int) int {
	return width * height * Channels
}
