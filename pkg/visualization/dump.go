// Package visualization renders the intermediate data of a block search as
// images so a run can be inspected by eye.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/bmp"
	"gonum.org/v1/gonum/mat"

	"blockmotion/internal/models"
	"blockmotion/pkg/pgm"
)

// Formats lists the supported dump formats
var Formats = []string{"png", "bmp", "jpeg", "pgm"}

var (
	heatLow  = colorful.Color{R: 0.08, G: 0.15, B: 0.55}
	heatHigh = colorful.Color{R: 0.98, G: 0.85, B: 0.15}
)

// Dumper writes search intermediates into a directory
type Dumper struct {
	// dir is the output directory, created on first write
	dir string

	// format is one of Formats
	format string
}

// NewDumper creates a dumper writing images of the given format into dir
func NewDumper(dir, format string) (*Dumper, error) {
	format = strings.ToLower(format)
	if format == "jpg" {
		format = "jpeg"
	}
	if !ValidFormat(format) {
		return nil, fmt.Errorf("unsupported dump format: %s (must be one of %s)", format, strings.Join(Formats, ", "))
	}
	return &Dumper{dir: dir, format: format}, nil
}

// ValidFormat reports whether format is one of Formats
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if strings.EqualFold(f, format) || (f == "jpeg" && strings.EqualFold(format, "jpg")) {
			return true
		}
	}
	return false
}

// Path returns the file a dump with the given name is written to
func (d *Dumper) Path(name string) string {
	ext := d.format
	if ext == "jpeg" {
		ext = "jpg"
	}
	return filepath.Join(d.dir, name+"."+ext)
}

// BlockImage renders a block as a grayscale image stretched to the full
// 16-bit range of its brightest sample
func BlockImage(b *models.Block) *image.Gray16 {
	var peak uint16
	for i := range b {
		for _, v := range b[i] {
			peak = max(peak, v)
		}
	}

	img := image.NewGray16(image.Rect(0, 0, models.BlockSize, models.BlockSize))
	for y := 0; y < models.BlockSize; y++ {
		for x := 0; x < models.BlockSize; x++ {
			img.SetGray16(x, y, color.Gray16{Y: stretch(b[y][x], peak)})
		}
	}
	return img
}

// WindowImage renders the valid region of a search window. Cells outside the
// region are left black.
func WindowImage(w *models.SearchWindow, region models.ValidRegion) *image.Gray16 {
	var peak uint16
	for i := region.RowStart; i < region.RowEnd; i++ {
		for j := region.ColStart; j < region.ColEnd; j++ {
			peak = max(peak, w[i][j])
		}
	}

	img := image.NewGray16(image.Rect(0, 0, models.WindowSize, models.WindowSize))
	for y := region.RowStart; y < region.RowEnd; y++ {
		for x := region.ColStart; x < region.ColEnd; x++ {
			img.SetGray16(x, y, color.Gray16{Y: stretch(w[y][x], peak)})
		}
	}
	return img
}

// SurfaceImage renders a cost surface as a heatmap, one pixel per element.
// The lowest cost is drawn in the cold colour and the highest in the hot one.
func SurfaceImage(surface mat.Matrix) *image.RGBA {
	rows, cols := surface.Dims()
	lo, hi := math.Inf(1), math.Inf(-1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := surface.At(r, c)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			t := 0.0
			if hi > lo {
				t = (surface.At(r, c) - lo) / (hi - lo)
			}
			img.Set(c, r, heatLow.BlendLab(heatHigh, t).Clamped())
		}
	}
	return img
}

func stretch(v, peak uint16) uint16 {
	if peak == 0 {
		return 0
	}
	return uint16(uint32(v) * 65535 / uint32(peak))
}

// Save encodes img into the dump directory under name and returns the path
func (d *Dumper) Save(name string, img image.Image) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}

	path := d.Path(name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create dump file: %w", err)
	}
	defer file.Close()

	switch d.format {
	case "png":
		err = png.Encode(file, img)
	case "bmp":
		err = bmp.Encode(file, img)
	case "jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	case "pgm":
		err = pgm.Encode(file, img)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return path, nil
}
