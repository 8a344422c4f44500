package motion

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"blockmotion/internal/models"
	"blockmotion/pkg/pgm"
)

// A flat image with one brighter block: the all-flat reference block 0 must
// be matched inside the flat area, never on the bright block
func TestEstimateFlatImageWithBrightBlock(t *testing.T) {
	const v = 100
	dir := t.TempDir()
	path := writePGM(t, filepath.Join(dir, "flat.pgm"), 64, 64, 255, nil, func(row, col int) uint16 {
		if row/models.BlockSize == 2 && col/models.BlockSize == 2 {
			return v + 50
		}
		return v
	})

	estimator := NewEstimator(&Params{ReferencePath: path, TargetPath: path})
	estimate, err := estimator.Estimate(0)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if estimate.MinMAD != 0 {
		t.Errorf("Expected an exact flat match, got MAD %f", estimate.MinMAD)
	}
	if estimate.Vector != (models.Displacement{}) {
		t.Errorf("Expected displacement 0,0, got %s", estimate.Vector)
	}
	if estimate.BlockIndex != 0 {
		t.Errorf("Expected block 0, got %d", estimate.BlockIndex)
	}
}

// The target is the reference moved 3 pixels right and 2 pixels up
func TestEstimateTranslatedImage(t *testing.T) {
	const dx, dy = 3, -2
	dir := t.TempDir()

	reference := writePGM(t, filepath.Join(dir, "reference.pgm"), 64, 64, 65535, binary.BigEndian, func(row, col int) uint16 {
		return uint16((row+10)*64 + col + 10)
	})
	target := writePGM(t, filepath.Join(dir, "target.pgm"), 64, 64, 65535, binary.BigEndian, func(row, col int) uint16 {
		return uint16((row-dy+10)*64 + col - dx + 10)
	})

	estimator := NewEstimator(&Params{
		ReferencePath: reference,
		TargetPath:    target,
		ByteOrder:     binary.BigEndian,
	})

	for _, index := range []int{5, 6, 9, 10} {
		estimate, err := estimator.Estimate(index)
		if err != nil {
			t.Fatalf("Estimate(%d) failed: %v", index, err)
		}
		if want := (models.Displacement{X: dx, Y: dy}); estimate.Vector != want {
			t.Errorf("Block %d: expected %s, got %s", index, want, estimate.Vector)
		}
		if estimate.MinMAD != 0 {
			t.Errorf("Block %d: expected MAD 0, got %f", index, estimate.MinMAD)
		}
	}
}

func TestEstimateClampsIndex(t *testing.T) {
	path := writePGM(t, filepath.Join(t.TempDir(), "ramp.pgm"), 64, 32, 4095, nil, rampPattern)
	estimator := NewEstimator(&Params{ReferencePath: path, TargetPath: path})

	for input, want := range map[int]int{-7: 0, 42: 7} {
		estimate, err := estimator.Estimate(input)
		if err != nil {
			t.Fatalf("Estimate(%d) failed: %v", input, err)
		}
		if estimate.BlockIndex != want {
			t.Errorf("Estimate(%d) searched block %d, expected %d", input, estimate.BlockIndex, want)
		}
	}
}

func TestEstimateMissingImages(t *testing.T) {
	dir := t.TempDir()
	present := writePGM(t, filepath.Join(dir, "present.pgm"), 32, 32, 255, nil, rampPattern)
	missing := filepath.Join(dir, "missing.pgm")

	for name, params := range map[string]*Params{
		"reference": {ReferencePath: missing, TargetPath: present},
		"target":    {ReferencePath: present, TargetPath: missing},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewEstimator(params).Estimate(0)
			if !errors.Is(err, pgm.ErrFileOpen) {
				t.Errorf("Expected ErrFileOpen, got %v", err)
			}
		})
	}
}

func TestEstimateSingleBlockImage(t *testing.T) {
	path := writePGM(t, filepath.Join(t.TempDir(), "tiny.pgm"), 16, 16, 255, nil, rampPattern)
	_, err := NewEstimator(&Params{ReferencePath: path, TargetPath: path}).Estimate(0)
	if !errors.Is(err, ErrSearchSpaceEmpty) {
		t.Errorf("Expected ErrSearchSpaceEmpty, got %v", err)
	}
}

func TestEstimateDumps(t *testing.T) {
	dir := t.TempDir()
	path := writePGM(t, filepath.Join(dir, "ramp.pgm"), 64, 64, 4095, nil, rampPattern)

	for _, format := range []string{"png", "bmp", "jpeg", "pgm"} {
		t.Run(format, func(t *testing.T) {
			dumpDir := filepath.Join(dir, "dump-"+format)
			estimator := NewEstimator(&Params{
				ReferencePath: path,
				TargetPath:    path,
				DumpDir:       dumpDir,
				DumpFormat:    format,
			})
			if _, err := estimator.Estimate(5); err != nil {
				t.Fatalf("Estimate failed: %v", err)
			}

			ext := format
			if ext == "jpeg" {
				ext = "jpg"
			}
			for _, name := range []string{"reference", "window", "match", "surface"} {
				info, err := os.Stat(filepath.Join(dumpDir, name+"."+ext))
				if err != nil {
					t.Errorf("Missing dump %s: %v", name, err)
					continue
				}
				if info.Size() == 0 {
					t.Errorf("Dump %s is empty", name)
				}
			}
		})
	}
}

func TestEstimateRejectsUnknownDumpFormat(t *testing.T) {
	dir := t.TempDir()
	path := writePGM(t, filepath.Join(dir, "ramp.pgm"), 64, 64, 4095, nil, rampPattern)
	estimator := NewEstimator(&Params{
		ReferencePath: path,
		TargetPath:    path,
		DumpDir:       filepath.Join(dir, "dump"),
		DumpFormat:    "tiff",
	})
	if _, err := estimator.Estimate(5); err == nil {
		t.Error("Expected an error for an unknown dump format")
	}
}
