package pgm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
)

// Write encodes a P5 image whose samples are produced by sample(row, col).
// Each header field is written on its own line. Samples wider than maxval
// are written unchanged; callers keep them in range.
func Write(w io.Writer, width, height, maxVal int, order binary.ByteOrder, sample func(row, col int) uint16) error {
	if width <= 0 || height <= 0 || maxVal <= 0 || maxVal > 65535 {
		return fmt.Errorf("invalid PGM geometry %dx%d maxval %d", width, height, maxVal)
	}
	if order == nil {
		order = binary.NativeEndian
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d\n%d\n%d\n", Magic, width, height, maxVal); err != nil {
		return err
	}

	depth := Header{MaxVal: maxVal}.SampleDepth()
	row := make([]byte, width*depth)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := sample(y, x)
			if depth == 1 {
				row[x] = byte(v)
			} else {
				order.PutUint16(row[2*x:], v)
			}
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Encode writes img as a 16-bit big-endian P5 image
func Encode(w io.Writer, img image.Image) error {
	b := img.Bounds()
	return Write(w, b.Dx(), b.Dy(), 65535, binary.BigEndian, func(row, col int) uint16 {
		return color.Gray16Model.Convert(img.At(b.Min.X+col, b.Min.Y+row)).(color.Gray16).Y
	})
}
