package webp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	fccRIFF = "RIFF"
	fccWEBP = "WEBP"
	fccVP8  = "VP8 "
	fccVP8L = "VP8L"
	fccVP8X = "VP8X"
	fccALPH = "ALPH"
	fccANIM = "ANIM"
	fccANMF = "ANMF"
)

// VP8X feature flags.
const (
	flagAnimation = 1 << 1
	flagAlpha     = 1 << 4
)

// ANMF flag bits.
const (
	anmfDisposeBackground = 1 << 0
	anmfNoBlend           = 1 << 1
)

type chunk struct {
	fourCC string
	data   []byte
}

// readChunk reads one RIFF sub-chunk including its pad byte. remaining is the
// number of bytes still declared by the RIFF header.
func readChunk(r io.Reader, remaining *int64) (chunk, error) {
	if *remaining < 8 {
		return chunk{}, io.EOF
	}
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return chunk{}, fmt.Errorf("%w: chunk header: %w", ErrFormat, io.ErrUnexpectedEOF)
	}
	n := int64(binary.LittleEndian.Uint32(hdr[4:8]))
	padded := n + n&1
	if padded > *remaining-8 {
		return chunk{}, fmt.Errorf("%w: chunk %q overruns container", ErrFormat, hdr[:4])
	}
	data, err := io.ReadAll(io.LimitReader(r, n))
	if err != nil || int64(len(data)) != n {
		return chunk{}, fmt.Errorf("%w: chunk %q: %w", ErrFormat, hdr[:4], io.ErrUnexpectedEOF)
	}
	if n&1 == 1 {
		var pad [1]byte
		if _, err := io.ReadFull(r, pad[:]); err != nil {
			return chunk{}, fmt.Errorf("%w: chunk padding: %w", ErrFormat, io.ErrUnexpectedEOF)
		}
	}
	*remaining -= 8 + padded
	return chunk{fourCC: string(hdr[:4]), data: data}, nil
}

// splitChunks parses a run of sub-chunks held in memory, as found inside ANMF.
func splitChunks(b []byte) ([]chunk, error) {
	var out []chunk
	for len(b) > 0 {
		if len(b) < 8 {
			return nil, fmt.Errorf("%w: truncated frame chunk", ErrFormat)
		}
		n := int(binary.LittleEndian.Uint32(b[4:8]))
		if n < 0 || n > len(b)-8 {
			return nil, fmt.Errorf("%w: frame chunk %q overruns frame", ErrFormat, b[:4])
		}
		out = append(out, chunk{fourCC: string(b[:4]), data: b[8 : 8+n]})
		b = b[8+n:]
		if n&1 == 1 && len(b) > 0 {
			b = b[1:]
		}
	}
	return out, nil
}

func u24(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16
}

func putU24(b []byte, v int) {
	b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
}

// container builds a standalone WebP file from a sequence of chunks.
func container(chunks ...chunk) []byte {
	size := 4
	for _, c := range chunks {
		size += 8 + len(c.data) + len(c.data)&1
	}
	var buf bytes.Buffer
	buf.Grow(8 + size)
	buf.WriteString(fccRIFF)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(size))
	buf.WriteString(fccWEBP)
	for _, c := range chunks {
		buf.WriteString(c.fourCC)
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(c.data)))
		buf.Write(c.data)
		if len(c.data)&1 == 1 {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

// standalone rewraps the bitstream chunks of one frame as a still WebP.
// A lossy frame with an ALPH chunk gets a VP8X header so the alpha plane is
// applied by the bitstream decoder.
func standalone(sub []chunk, width, height int) ([]byte, error) {
	var alph, image *chunk
	for i := range sub {
		switch sub[i].fourCC {
		case fccALPH:
			if alph == nil {
				alph = &sub[i]
			}
		case fccVP8, fccVP8L:
			if image == nil {
				image = &sub[i]
			}
		}
	}
	if image == nil {
		return nil, fmt.Errorf("%w: frame has no bitstream", ErrFormat)
	}
	if image.fourCC == fccVP8L || alph == nil {
		return container(*image), nil
	}

	vp8x := make([]byte, 10)
	vp8x[0] = flagAlpha
	putU24(vp8x[4:7], width-1)
	putU24(vp8x[7:10], height-1)
	return container(chunk{fourCC: fccVP8X, data: vp8x}, *alph, *image), nil
}
