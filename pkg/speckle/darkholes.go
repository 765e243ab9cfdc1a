package speckle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"specklefilter/pkg/morphology"
)

// EnhanceDarkHoles finds dark roundish regions inside brighter rings using
// morphological reconstruction (a rolling-ball style filter).
//
// The image is inverted so holes become peaks. The inverted image is eroded
// once per step with the unit disk and the eroded marker is reconstructed
// under the inverted image, which drops every peak the erosions have
// flattened. The difference between consecutive reconstructions holds the
// peaks removed at that step: step k isolates holes about 2k-1 pixels
// across. Differences for steps minRadius..maxRadius are combined with a
// pointwise maximum.
//
// Pixels excluded by the mask are left out of erosion and reconstruction.
// Their output value is not meaningful; Filter restores them from the source.
func EnhanceDarkHoles(img *mat.Dense, minRadius, maxRadius int, mask *morphology.Mask) (*mat.Dense, error) {
	if minRadius < 1 {
		return nil, &InvariantError{Condition: fmt.Sprintf("minimum hole radius %d is below 1", minRadius)}
	}
	if minRadius > maxRadius {
		return nil, &InvariantError{Condition: fmt.Sprintf("minimum hole radius %d exceeds maximum %d", minRadius, maxRadius)}
	}
	if err := morphology.CheckShape(img, mask); err != nil {
		return nil, &InvariantError{Condition: err.Error(), Err: err}
	}

	rows, cols := img.Dims()
	top := validMax(img, mask)
	inverted := mat.NewDense(rows, cols, nil)
	inverted.Apply(func(_, _ int, v float64) float64 {
		return top - v
	}, img)

	unit := morphology.Disk(1)
	marker := inverted
	previous := inverted
	enhanced := mat.NewDense(rows, cols, nil)

	for step := 1; step <= maxRadius; step++ {
		var err error
		marker, err = unit.Erode(marker, mask)
		if err != nil {
			return nil, err
		}
		reconstructed, err := morphology.Reconstruct(marker, inverted, mask)
		if err != nil {
			return nil, fmt.Errorf("dark hole step %d: %w", step, err)
		}
		if step >= minRadius {
			prev := previous
			enhanced.Apply(func(r, c int, v float64) float64 {
				return math.Max(v, prev.At(r, c)-reconstructed.At(r, c))
			}, enhanced)
		}
		previous = reconstructed
	}
	return enhanced, nil
}

// validMax is the largest value among the pixels the mask includes. With
// no included pixels it falls back to the image maximum.
func validMax(img *mat.Dense, mask *morphology.Mask) float64 {
	if mask == nil || mask.Count() == 0 {
		return mat.Max(img)
	}
	rows, cols := img.Dims()
	top := math.Inf(-1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if mask.At(r, c) && img.At(r, c) > top {
				top = img.At(r, c)
			}
		}
	}
	return top
}
