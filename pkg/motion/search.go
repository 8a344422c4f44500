package motion

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"blockmotion/internal/models"
)

// ErrSearchSpaceEmpty is returned when the valid region of a search window
// admits no candidate position
var ErrSearchSpaceEmpty = errors.New("search window has no candidate positions")

// SearchResult describes the outcome of an exhaustive block search
type SearchResult struct {
	// Vector is the displacement of the best candidate relative to the
	// reference block's position in the window centre
	Vector models.Displacement

	// Row and Col are the window-local top-left coordinates of the best candidate
	Row int
	Col int

	// MinMAD is the mean absolute difference of the best candidate
	MinMAD float64

	// Region is the valid region the search ran over
	Region models.ValidRegion

	// Surface holds the MAD of every candidate. Element (r, c) belongs to the
	// candidate at window-local (Region.RowStart+r, Region.ColStart+c).
	Surface *mat.Dense
}

// SurfaceStats returns the mean and standard deviation of all candidate MADs
func (r *SearchResult) SurfaceStats() (mean, std float64) {
	data := r.Surface.RawMatrix().Data
	if len(data) < 2 {
		return stat.Mean(data, nil), 0
	}
	return stat.MeanStdDev(data, nil)
}

// MeanAbsoluteDifference returns the average per-pixel absolute intensity
// difference between two blocks
func MeanAbsoluteDifference(a, b *models.Block) float64 {
	var sum int64
	for i := 0; i < models.BlockSize; i++ {
		for j := 0; j < models.BlockSize; j++ {
			d := int32(a[i][j]) - int32(b[i][j])
			if d < 0 {
				d = -d
			}
			sum += int64(d)
		}
	}
	return float64(sum) / (models.BlockSize * models.BlockSize)
}

// candidateSpan returns the number of candidate rows and columns in region.
// The last position of each axis is exclusive: rows run over
// [RowStart, RowEnd-BlockSize) and columns over [ColStart, ColEnd-BlockSize).
func candidateSpan(region models.ValidRegion) (rows, cols int) {
	return region.RowEnd - models.BlockSize - region.RowStart,
		region.ColEnd - models.BlockSize - region.ColStart
}

// Search compares ref against every candidate block inside the valid region
// of window and returns the position with the lowest MAD. Candidates are
// visited row by row; among equal MADs the first one visited wins.
func Search(ref *models.Block, window *models.SearchWindow, region models.ValidRegion) (*SearchResult, error) {
	if region.RowStart < 0 || region.ColStart < 0 ||
		region.RowEnd > models.WindowSize || region.ColEnd > models.WindowSize {
		return nil, fmt.Errorf("valid region %+v exceeds %dx%d window", region, models.WindowSize, models.WindowSize)
	}

	rows, cols := candidateSpan(region)
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: region %+v", ErrSearchSpaceEmpty, region)
	}

	result := &SearchResult{
		Region:  region,
		Surface: mat.NewDense(rows, cols, nil),
	}

	found := false
	for i := region.RowStart; i < region.RowEnd-models.BlockSize; i++ {
		for j := region.ColStart; j < region.ColEnd-models.BlockSize; j++ {
			candidate := window.BlockAt(i, j)
			mad := MeanAbsoluteDifference(ref, &candidate)
			result.Surface.Set(i-region.RowStart, j-region.ColStart, mad)

			if !found || mad < result.MinMAD {
				found = true
				result.MinMAD = mad
				result.Row = i
				result.Col = j
			}
		}
	}

	result.Vector = models.Displacement{
		X: result.Col - models.BlockSize,
		Y: result.Row - models.BlockSize,
	}
	return result, nil
}

// FullSearch runs Search and returns only the displacement of the best match
func FullSearch(ref *models.Block, window *models.SearchWindow, region models.ValidRegion) (models.Displacement, error) {
	result, err := Search(ref, window, region)
	if err != nil {
		return models.Displacement{}, err
	}
	return result.Vector, nil
}
