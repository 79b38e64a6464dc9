package apng

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// maxChunkLength is the largest length a PNG chunk may declare (2^31-1).
const maxChunkLength = 0x7fffffff

type chunk struct {
	typ  string
	data []byte
}

// readChunk reads one length-type-data-crc chunk and verifies its checksum.
func readChunk(r io.Reader) (chunk, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return chunk{}, fmt.Errorf("%w: missing IEND", ErrFormat)
		}
		return chunk{}, fmt.Errorf("%w: chunk header: %w", ErrFormat, io.ErrUnexpectedEOF)
	}
	n := binary.BigEndian.Uint32(hdr[:4])
	if n > maxChunkLength {
		return chunk{}, fmt.Errorf("%w: chunk length %d", ErrFormat, n)
	}
	typ := string(hdr[4:8])

	// LimitReader keeps a corrupt length from allocating gigabytes up front.
	data, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil || uint32(len(data)) != n {
		return chunk{}, fmt.Errorf("%w: %s data: %w", ErrFormat, typ, io.ErrUnexpectedEOF)
	}
	var crc [4]byte
	if _, err := io.ReadFull(r, crc[:]); err != nil {
		return chunk{}, fmt.Errorf("%w: %s crc: %w", ErrFormat, typ, io.ErrUnexpectedEOF)
	}

	h := crc32.NewIEEE()
	_, _ = h.Write(hdr[4:8])
	_, _ = h.Write(data)
	if h.Sum32() != binary.BigEndian.Uint32(crc[:]) {
		return chunk{}, fmt.Errorf("%w: %s", ErrChecksum, typ)
	}
	return chunk{typ: typ, data: data}, nil
}

// writeChunk appends a chunk with a freshly computed checksum to buf.
func writeChunk(buf *bytes.Buffer, typ string, data []byte) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(len(data)))
	buf.Write(b[:])
	buf.WriteString(typ)
	buf.Write(data)

	h := crc32.NewIEEE()
	_, _ = h.Write([]byte(typ))
	_, _ = h.Write(data)
	binary.BigEndian.PutUint32(b[:], h.Sum32())
	buf.Write(b[:])
}
