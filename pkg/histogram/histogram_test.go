package histogram

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"blockmotion/pkg/pgm"
)

func writeImage(t *testing.T, width, height, maxVal int, order binary.ByteOrder, pattern func(row, col int) uint16) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hist.pgm")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer file.Close()
	if err := pgm.Write(file, width, height, maxVal, order, pattern); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}
	return path
}

func TestComputeOneByte(t *testing.T) {
	// One column per group: sample 16*col+5 has top bits equal to col
	path := writeImage(t, 16, 4, 255, nil, func(row, col int) uint16 {
		return uint16(16*col + 5)
	})

	h, err := Compute(path, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if h.Pixels != 64 {
		t.Errorf("Expected 64 pixels, got %d", h.Pixels)
	}
	for group := 0; group < NumGroups; group++ {
		if h.Counts[group] != 4 {
			t.Errorf("Group %d: expected count 4, got %d", group, h.Counts[group])
		}
		if h.Frequencies[group] != 1.0/16 {
			t.Errorf("Group %d: expected frequency 0.0625, got %f", group, h.Frequencies[group])
		}
	}
	if e := h.Entropy(); math.Abs(e-4) > 1e-12 {
		t.Errorf("Expected entropy of 4 bits for a uniform distribution, got %f", e)
	}
}

func TestComputeTwoByte(t *testing.T) {
	path := writeImage(t, 4, 2, 65535, binary.BigEndian, func(row, col int) uint16 {
		if row == 0 {
			return 0xF123
		}
		return 0x0FFF
	})

	h, err := Compute(path, binary.BigEndian)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if h.Counts[15] != 4 || h.Counts[0] != 4 {
		t.Errorf("Expected 4 samples in groups 0 and 15, got %v", h.Counts)
	}
	if h.Frequencies[15] != 0.5 || h.Frequencies[0] != 0.5 {
		t.Errorf("Expected frequencies of 0.5, got %v", h.Frequencies)
	}
	if e := h.Entropy(); math.Abs(e-1) > 1e-12 {
		t.Errorf("Expected entropy of 1 bit, got %f", e)
	}
}

func TestComputeSingleGroup(t *testing.T) {
	path := writeImage(t, 3, 3, 255, nil, func(row, col int) uint16 { return 0x7A })

	h, err := Compute(path, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if h.Frequencies[7] != 1 {
		t.Errorf("Expected all samples in group 7, got %v", h.Frequencies)
	}
	if h.Entropy() != 0 {
		t.Errorf("Expected zero entropy, got %f", h.Entropy())
	}
}

func TestComputeErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Compute(filepath.Join(dir, "missing.pgm"), nil); !errors.Is(err, pgm.ErrFileOpen) {
		t.Errorf("Expected ErrFileOpen, got %v", err)
	}

	short := filepath.Join(dir, "short.pgm")
	if err := os.WriteFile(short, []byte("P5\n4\n4\n255\n\x10\x20"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := Compute(short, nil); !errors.Is(err, pgm.ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
}
