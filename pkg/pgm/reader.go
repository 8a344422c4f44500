// Package pgm reads binary (P5) Portable Gray Map images.
//
// Only the header is parsed eagerly. Pixel data stays on disk and is accessed
// through row-major random access, which lets callers copy a small square of
// a large image without loading the rest of it.
package pgm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Magic is the only supported PGM variant
const Magic = "P5"

// maxTokenLength bounds every header token, numeric ones included.
// Five digits cover the largest 16-bit maxval.
const maxTokenLength = 5

var (
	// ErrFileOpen is returned when an image file cannot be opened for reading
	ErrFileOpen = errors.New("unable to open image")

	// ErrMalformedHeader is returned for missing, non-numeric or out-of-range header tokens
	ErrMalformedHeader = errors.New("malformed PGM header")

	// ErrTruncated is returned when pixel data ends before the header says it should
	ErrTruncated = errors.New("PGM pixel data truncated")
)

// Header holds the four ASCII header fields of a P5 image
type Header struct {
	Magic  string
	Width  int
	Height int
	MaxVal int
}

// SampleDepth returns the number of bytes used by one pixel sample
func (h Header) SampleDepth() int {
	if h.MaxVal > 255 {
		return 2
	}
	return 1
}

// ParseByteOrder maps a configuration name to the byte order used for
// 2-byte samples. "native" (or an empty name) reads samples as host-order
// words, "big" follows the PGM standard.
func ParseByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(name) {
	case "", "native":
		return binary.NativeEndian, nil
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unsupported byte order: %s (must be native, little or big)", name)
	}
}

// ReadHeader parses magic, width, height and maxval from r. Tokens are
// separated by whitespace and exactly one whitespace byte after maxval is
// consumed. The returned count is the number of bytes read, which is the
// offset of the first pixel sample.
func ReadHeader(r io.ByteReader) (Header, int64, error) {
	var h Header
	var consumed int64

	next := func(field string) (string, error) {
		token, n, err := readToken(r)
		consumed += n
		if err != nil {
			return "", fmt.Errorf("%w: reading %s: %v", ErrMalformedHeader, field, err)
		}
		return token, nil
	}

	magic, err := next("magic")
	if err != nil {
		return h, consumed, err
	}
	if magic != Magic {
		return h, consumed, fmt.Errorf("%w: magic %q is not %s", ErrMalformedHeader, magic, Magic)
	}
	h.Magic = magic

	fields := []struct {
		name string
		dst  *int
		max  int
	}{
		{"width", &h.Width, 99999},
		{"height", &h.Height, 99999},
		{"maxval", &h.MaxVal, 65535},
	}
	for _, f := range fields {
		token, err := next(f.name)
		if err != nil {
			return h, consumed, err
		}
		value, err := strconv.Atoi(token)
		if err != nil || value <= 0 || value > f.max || strings.ContainsAny(token, "+-") {
			return h, consumed, fmt.Errorf("%w: %s %q", ErrMalformedHeader, f.name, token)
		}
		*f.dst = value
	}

	return h, consumed, nil
}

// readToken skips leading whitespace, then reads bytes up to and including
// the next whitespace byte. End of input terminates a non-empty token.
func readToken(r io.ByteReader) (string, int64, error) {
	var sb strings.Builder
	var n int64
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), n, nil
			}
			if err == io.EOF {
				return "", n, io.ErrUnexpectedEOF
			}
			return "", n, err
		}
		n++
		if isSpace(c) {
			if sb.Len() == 0 {
				continue
			}
			return sb.String(), n, nil
		}
		if sb.Len() == maxTokenLength {
			return "", n, fmt.Errorf("token longer than %d characters", maxTokenLength)
		}
		sb.WriteByte(c)
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// byteReader adapts an unbuffered reader so the header can be consumed
// without reading past the first pixel sample
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

// Image is an open PGM file positioned inside its pixel data
type Image struct {
	Header

	file       *os.File
	order      binary.ByteOrder
	dataOffset int64
	scratch    []byte
}

// Open opens path, parses its header and leaves the cursor at the first
// pixel sample. order decodes 2-byte samples; nil means host order.
// The caller must Close the image.
func Open(path string, order binary.ByteOrder) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %w", ErrFileOpen, path, err)
	}

	header, offset, err := ReadHeader(&byteReader{r: file})
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if order == nil {
		order = binary.NativeEndian
	}

	return &Image{
		Header:     header,
		file:       file,
		order:      order,
		dataOffset: offset,
	}, nil
}

// Close releases the underlying file
func (img *Image) Close() error {
	return img.file.Close()
}

// DataOffset returns the file offset of the first pixel sample
func (img *Image) DataOffset() int64 {
	return img.dataOffset
}

// PixelOffset returns the byte offset of pixel (row, col) from the start of
// pixel data
func (img *Image) PixelOffset(row, col int) int64 {
	return int64(row*img.Width+col) * int64(img.SampleDepth())
}

// SeekPixel positions the cursor at pixel (row, col)
func (img *Image) SeekPixel(row, col int) error {
	if _, err := img.file.Seek(img.dataOffset+img.PixelOffset(row, col), io.SeekStart); err != nil {
		return fmt.Errorf("seeking to pixel (%d, %d): %w", row, col, err)
	}
	return nil
}

// Skip moves the cursor forward (or backward, for negative counts) by the
// given number of pixels relative to its current position
func (img *Image) Skip(pixels int) error {
	if pixels == 0 {
		return nil
	}
	if _, err := img.file.Seek(int64(pixels*img.SampleDepth()), io.SeekCurrent); err != nil {
		return fmt.Errorf("skipping %d pixels: %w", pixels, err)
	}
	return nil
}

// ReadSamples fills dst with consecutive samples starting at the cursor
func (img *Image) ReadSamples(dst []uint16) error {
	depth := img.SampleDepth()
	need := len(dst) * depth
	if cap(img.scratch) < need {
		img.scratch = make([]byte, need)
	}
	buf := img.scratch[:need]

	if _, err := io.ReadFull(img.file, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: wanted %d samples", ErrTruncated, len(dst))
		}
		return err
	}

	if depth == 1 {
		for i, b := range buf {
			dst[i] = uint16(b)
		}
		return nil
	}
	for i := range dst {
		dst[i] = img.order.Uint16(buf[2*i:])
	}
	return nil
}
