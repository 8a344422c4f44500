package motion

import (
	"encoding/binary"
	"fmt"
	"image"
	"log"
	"time"

	"blockmotion/internal/models"
	"blockmotion/pkg/visualization"
)

// Params holds the inputs of one motion estimation run
type Params struct {
	// ReferencePath is the image the reference block is taken from
	ReferencePath string

	// TargetPath is the image that is searched for the reference block
	TargetPath string

	// ByteOrder decodes 2-byte samples of both images. nil means host order.
	ByteOrder binary.ByteOrder

	// DumpDir receives debug images of the search when non-empty
	DumpDir string

	// DumpFormat is the image format of the dumps (png, bmp, jpeg or pgm)
	DumpFormat string
}

// Estimate is the outcome of Estimator.Estimate
type Estimate struct {
	*SearchResult

	// BlockIndex is the clamped index that was actually searched
	BlockIndex int

	// Elapsed is the wall time of the whole run, file I/O included
	Elapsed time.Duration
}

// Estimator finds where a block of the reference image moved to in the target image
type Estimator struct {
	params *Params
}

// NewEstimator creates an estimator for the given parameters
func NewEstimator(params *Params) *Estimator {
	return &Estimator{params: params}
}

// Estimate runs the full pipeline for one block: reference block extraction,
// search window extraction around the clamped index and exhaustive search.
func (e *Estimator) Estimate(blockIndex int) (*Estimate, error) {
	start := time.Now()

	index, ref, err := LoadReferenceBlock(e.params.ReferencePath, blockIndex, e.params.ByteOrder)
	if err != nil {
		return nil, err
	}
	if index != blockIndex {
		log.Printf("Block index %d clamped to %d", blockIndex, index)
	}
	log.Printf("Loaded reference block %d from %s", index, e.params.ReferencePath)

	window, region, err := LoadSearchWindow(e.params.TargetPath, index, e.params.ByteOrder)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded search window from %s, valid rows [%d,%d) cols [%d,%d)",
		e.params.TargetPath, region.RowStart, region.RowEnd, region.ColStart, region.ColEnd)

	result, err := Search(&ref, &window, region)
	if err != nil {
		return nil, fmt.Errorf("block %d: %w", index, err)
	}
	log.Printf("Best match at window (%d, %d), displacement %s, MAD %f",
		result.Row, result.Col, result.Vector, result.MinMAD)

	if e.params.DumpDir != "" {
		if err := e.dump(&ref, &window, result); err != nil {
			return nil, err
		}
	}

	return &Estimate{
		SearchResult: result,
		BlockIndex:   index,
		Elapsed:      time.Since(start),
	}, nil
}

// dump writes the reference block, the search window, the chosen match and
// the cost surface into the dump directory
func (e *Estimator) dump(ref *models.Block, window *models.SearchWindow, result *SearchResult) error {
	dumper, err := visualization.NewDumper(e.params.DumpDir, e.params.DumpFormat)
	if err != nil {
		return err
	}

	match := window.BlockAt(result.Row, result.Col)
	for _, d := range []struct {
		name string
		img  image.Image
	}{
		{"reference", visualization.BlockImage(ref)},
		{"window", visualization.WindowImage(window, result.Region)},
		{"match", visualization.BlockImage(&match)},
		{"surface", visualization.SurfaceImage(result.Surface)},
	} {
		path, err := dumper.Save(d.name, d.img)
		if err != nil {
			return fmt.Errorf("dumping %s: %w", d.name, err)
		}
		log.Printf("Saved %s to %s", d.name, path)
	}
	return nil
}
