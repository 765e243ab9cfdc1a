package morphology

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrNotConverged is returned when reconstruction does not reach a fixed
// point within its sweep budget.
var ErrNotConverged = errors.New("morphology: reconstruction did not converge")

// Reconstruct performs grayscale reconstruction by dilation of marker under
// limit with 4-connectivity: the marker is dilated repeatedly and clipped to
// limit until nothing changes. The marker is clipped to limit first.
//
// Pixels excluded by the mask neither propagate nor receive values.
func Reconstruct(marker, limit *mat.Dense, mask *Mask) (*mat.Dense, error) {
	if limit == nil || limit.IsEmpty() {
		return nil, ErrEmptyImage
	}
	rows, cols := limit.Dims()
	return reconstruct(marker, limit, mask, rows*cols+1)
}

// reconstruct runs alternating forward and backward raster sweeps. Each
// forward sweep pulls values from the upper and left neighbours, each
// backward sweep from the lower and right ones. The number of sweep pairs
// needed is bounded by the longest geodesic path, which never exceeds the
// pixel count.
func reconstruct(marker, limit *mat.Dense, mask *Mask, maxSweeps int) (*mat.Dense, error) {
	if err := CheckShape(limit, mask); err != nil {
		return nil, err
	}
	if err := CheckShape(marker, nil); err != nil {
		return nil, err
	}
	rows, cols := limit.Dims()
	if mr, mc := marker.Dims(); mr != rows || mc != cols {
		return nil, fmt.Errorf("%w: marker is %dx%d, limit is %dx%d", ErrShapeMismatch, mr, mc, rows, cols)
	}

	lim := mat.DenseCopyOf(limit).RawMatrix().Data
	out := mat.DenseCopyOf(marker)
	rec := out.RawMatrix().Data
	for i, v := range lim {
		if rec[i] > v {
			rec[i] = v
		}
	}

	for sweep := 0; ; sweep++ {
		if sweep >= maxSweeps {
			return nil, fmt.Errorf("%w after %d sweeps", ErrNotConverged, sweep)
		}
		changed := false

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if !mask.includes(r, c) {
					continue
				}
				i := r*cols + c
				v := rec[i]
				if r > 0 && mask.includes(r-1, c) && rec[i-cols] > v {
					v = rec[i-cols]
				}
				if c > 0 && mask.includes(r, c-1) && rec[i-1] > v {
					v = rec[i-1]
				}
				if v > lim[i] {
					v = lim[i]
				}
				if v != rec[i] {
					rec[i] = v
					changed = true
				}
			}
		}

		for r := rows - 1; r >= 0; r-- {
			for c := cols - 1; c >= 0; c-- {
				if !mask.includes(r, c) {
					continue
				}
				i := r*cols + c
				v := rec[i]
				if r < rows-1 && mask.includes(r+1, c) && rec[i+cols] > v {
					v = rec[i+cols]
				}
				if c < cols-1 && mask.includes(r, c+1) && rec[i+1] > v {
					v = rec[i+1]
				}
				if v > lim[i] {
					v = lim[i]
				}
				if v != rec[i] {
					rec[i] = v
					changed = true
				}
			}
		}

		if !changed {
			return out, nil
		}
	}
}
