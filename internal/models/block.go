package models

import "fmt"

// BlockSize is the edge length in pixels of a motion estimation block
const BlockSize = 16

// WindowSize is the edge length of a search window: the reference block
// plus one neighbouring block on every side
const WindowSize = 3 * BlockSize

// Block is a square of pixel samples addressed as [row][col]
type Block [BlockSize][BlockSize]uint16

// SearchWindow holds the 3x3 block neighbourhood of a reference position.
// The reference block itself sits at window-local offset (BlockSize, BlockSize).
type SearchWindow [WindowSize][WindowSize]uint16

// ValidRegion describes the part of a SearchWindow that maps to real image
// pixels after clipping at the image edges. Bounds are half-open:
// rows [RowStart, RowEnd) and columns [ColStart, ColEnd).
type ValidRegion struct {
	RowStart int
	RowEnd   int
	ColStart int
	ColEnd   int
}

// Contains reports whether the window-local cell (row, col) holds image data
func (r ValidRegion) Contains(row, col int) bool {
	return row >= r.RowStart && row < r.RowEnd && col >= r.ColStart && col < r.ColEnd
}

// Rows returns the number of valid rows
func (r ValidRegion) Rows() int {
	return r.RowEnd - r.RowStart
}

// Cols returns the number of valid columns
func (r ValidRegion) Cols() int {
	return r.ColEnd - r.ColStart
}

// Displacement is the offset of the best matching block relative to the
// reference block's own position. Positive X points right, positive Y down.
type Displacement struct {
	X int
	Y int
}

// String formats the displacement as "<dx>,<dy>"
func (d Displacement) String() string {
	return fmt.Sprintf("%d,%d", d.X, d.Y)
}

// BlockAt copies the BlockSize x BlockSize square whose top-left corner is at
// window-local (row, col). The caller must keep the square inside the window.
func (w *SearchWindow) BlockAt(row, col int) Block {
	var b Block
	for k := 0; k < BlockSize; k++ {
		copy(b[k][:], w[row+k][col:col+BlockSize])
	}
	return b
}
