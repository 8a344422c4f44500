package motion

import (
	"encoding/binary"
	"errors"
	"fmt"

	"blockmotion/internal/models"
	"blockmotion/pkg/pgm"
)

// ErrImageTooSmall is returned when an image is narrower or shorter than one
// block, so that it contains no addressable block at all
var ErrImageTooSmall = errors.New("image smaller than one block")

// BlocksPerRow returns how many whole blocks fit across an image of the given width
func BlocksPerRow(width int) int {
	return width / models.BlockSize
}

// MaxBlockIndex returns the largest valid raster-order block index for an
// image of the given dimensions. It is negative when no block fits.
func MaxBlockIndex(width, height int) int {
	return (width/models.BlockSize)*(height/models.BlockSize) - 1
}

// ClampBlockIndex limits index to [0, MaxBlockIndex(width, height)].
// Out-of-range indices are moved to the nearest bound, never rejected.
func ClampBlockIndex(index, width, height int) int {
	maxIndex := MaxBlockIndex(width, height)
	if index > maxIndex {
		index = maxIndex
	}
	if index < 0 {
		index = 0
	}
	return index
}

// BlockOrigin returns the image row and column of the top-left pixel of a block
func BlockOrigin(index, width int) (row, col int) {
	perRow := BlocksPerRow(width)
	return index / perRow * models.BlockSize, index % perRow * models.BlockSize
}

// ComputeValidRegion returns the window-local rectangle of a search window
// around block index that is backed by image pixels. A missing neighbour row
// or column on any side removes one block-width strip from that side.
func ComputeValidRegion(index, width, height int) models.ValidRegion {
	row, col := BlockOrigin(index, width)
	firstRow := row - models.BlockSize
	firstCol := col - models.BlockSize

	region := models.ValidRegion{
		RowEnd: models.WindowSize,
		ColEnd: models.WindowSize,
	}
	if firstRow < 0 {
		region.RowStart = models.BlockSize
	}
	if firstCol < 0 {
		region.ColStart = models.BlockSize
	}
	if firstRow+models.WindowSize > height {
		region.RowEnd = 2 * models.BlockSize
	}
	if firstCol+models.WindowSize > width {
		region.ColEnd = 2 * models.BlockSize
	}
	return region
}

func checkBlockFits(img *pgm.Image) error {
	if MaxBlockIndex(img.Width, img.Height) < 0 {
		return fmt.Errorf("%w: %dx%d, block is %dx%d",
			ErrImageTooSmall, img.Width, img.Height, models.BlockSize, models.BlockSize)
	}
	return nil
}

// LoadReferenceBlock reads the block with raster index blockIndex from the
// image at path. The index is clamped to the image's block range first and
// the clamped value is returned so later steps address the same block.
func LoadReferenceBlock(path string, blockIndex int, order binary.ByteOrder) (int, models.Block, error) {
	var block models.Block

	img, err := pgm.Open(path, order)
	if err != nil {
		return 0, block, err
	}
	defer img.Close()

	if err := checkBlockFits(img); err != nil {
		return 0, block, fmt.Errorf("%s: %w", path, err)
	}

	index := ClampBlockIndex(blockIndex, img.Width, img.Height)
	row, col := BlockOrigin(index, img.Width)

	if err := img.SeekPixel(row, col); err != nil {
		return 0, block, err
	}
	for i := 0; i < models.BlockSize; i++ {
		if err := img.ReadSamples(block[i][:]); err != nil {
			return 0, block, fmt.Errorf("%s: block %d row %d: %w", path, index, i, err)
		}
		if err := img.Skip(img.Width - models.BlockSize); err != nil {
			return 0, block, err
		}
	}

	return index, block, nil
}

// LoadSearchWindow reads the 3x3 block neighbourhood centred on blockIndex
// from the image at path. Only cells inside the returned ValidRegion are
// populated; the rest stay zero.
//
// blockIndex is expected to be the value returned by LoadReferenceBlock. It is
// clamped against this image's dimensions as well so a target image with
// fewer blocks cannot move the read outside its pixel data.
func LoadSearchWindow(path string, blockIndex int, order binary.ByteOrder) (models.SearchWindow, models.ValidRegion, error) {
	var window models.SearchWindow

	img, err := pgm.Open(path, order)
	if err != nil {
		return window, models.ValidRegion{}, err
	}
	defer img.Close()

	if err := checkBlockFits(img); err != nil {
		return window, models.ValidRegion{}, fmt.Errorf("%s: %w", path, err)
	}

	index := ClampBlockIndex(blockIndex, img.Width, img.Height)
	region := ComputeValidRegion(index, img.Width, img.Height)

	row, col := BlockOrigin(index, img.Width)
	firstRow := max(row-models.BlockSize, 0)
	firstCol := max(col-models.BlockSize, 0)

	if err := img.SeekPixel(firstRow, firstCol); err != nil {
		return window, region, err
	}
	cols := region.Cols()
	for i := region.RowStart; i < region.RowEnd; i++ {
		if err := img.ReadSamples(window[i][region.ColStart:region.ColEnd]); err != nil {
			return window, region, fmt.Errorf("%s: window row %d: %w", path, i, err)
		}
		if err := img.Skip(img.Width - cols); err != nil {
			return window, region, err
		}
	}

	return window, region, nil
}
