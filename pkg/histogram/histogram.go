// Package histogram counts how pixel intensities of a PGM image fall into
// groups given by the four most significant bits of each sample.
package histogram

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"blockmotion/pkg/pgm"
)

// NumGroups is the number of distinct values of the top four bits
const NumGroups = 16

// Histogram holds group counts and relative frequencies of one image
type Histogram struct {
	// Counts is the number of samples per group
	Counts [NumGroups]int

	// Frequencies is Counts divided by the pixel count of the image
	Frequencies []float64

	// Pixels is width * height from the image header
	Pixels int
}

// Compute reads every sample of the image at path and groups it by its top
// four bits. order decodes 2-byte samples; nil means host order.
func Compute(path string, order binary.ByteOrder) (*Histogram, error) {
	img, err := pgm.Open(path, order)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	shift := 4
	if img.SampleDepth() == 2 {
		shift = 12
	}

	h := &Histogram{Pixels: img.Width * img.Height}
	row := make([]uint16, img.Width)
	for y := 0; y < img.Height; y++ {
		if err := img.ReadSamples(row); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, y, err)
		}
		for _, v := range row {
			h.Counts[v>>shift]++
		}
	}

	h.Frequencies = make([]float64, NumGroups)
	for i, c := range h.Counts {
		h.Frequencies[i] = float64(c)
	}
	floats.Scale(1/float64(h.Pixels), h.Frequencies)

	return h, nil
}

// Entropy returns the Shannon entropy of the group distribution in bits
func (h *Histogram) Entropy() float64 {
	return stat.Entropy(h.Frequencies) / math.Ln2
}
