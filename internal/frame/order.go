package frame

import "fmt"

// ChannelOrder is the byte order of a 4-channel pixel as delivered by a
// bitstream decoder.
type ChannelOrder uint8

const (
	// OrderRGBA is red, green, blue, alpha. Frames always end up in this order.
	OrderRGBA ChannelOrder = iota

	// OrderBGRA is blue, green, red, alpha. Common for native codecs and on Windows.
	OrderBGRA

	// OrderARGB is alpha, red, green, blue. Used by packed 32-bit ARGB words
	// written big-endian.
	OrderARGB
)

// String returns the order name.
func (o ChannelOrder) String() string {
	switch o {
	case OrderRGBA:
		return "RGBA"
	case OrderBGRA:
		return "BGRA"
	case OrderARGB:
		return "ARGB"
	default:
		return fmt.Sprintf("ChannelOrder(%d)", uint8(o))
	}
}

// Normalize rewrites pix in place from order o to RGBA.
// len(pix) must be a multiple of 4.
func Normalize(pix []byte, o ChannelOrder) error {
	if len(pix)%4 != 0 {
		return fmt.Errorf("frame: %d bytes is not a whole number of pixels", len(pix))
	}
	switch o {
	case OrderRGBA:
	case OrderBGRA:
		for i := 0; i < len(pix); i += 4 {
			pix[i], pix[i+2] = pix[i+2], pix[i]
		}
	case OrderARGB:
		for i := 0; i < len(pix); i += 4 {
			a := pix[i]
			pix[i], pix[i+1], pix[i+2], pix[i+3] = pix[i+1], pix[i+2], pix[i+3], a
		}
	default:
		return fmt.Errorf("frame: unknown channel order %v", o)
	}
	return nil
}

// Premultiply returns a copy of straight-alpha RGBA pixels with color
// channels scaled by alpha, rounding to nearest.
func Premultiply(pix []byte) []byte {
	out := make([]byte, len(pix))
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint16(pix[i+3])
		out[i] = byte((uint16(pix[i])*a + 127) / 255)
		out[i+1] = byte((uint16(pix[i+1])*a + 127) / 255)
		out[i+2] = byte((uint16(pix[i+2])*a + 127) / 255)
		out[i+3] = byte(a)
	}
	return out
}
