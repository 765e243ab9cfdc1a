package morphology

import (
	"gonum.org/v1/gonum/mat"
)

// Erode replaces every pixel by the minimum over its disk neighbourhood.
func Erode(img *mat.Dense, radius float64, mask *Mask) (*mat.Dense, error) {
	return Disk(radius).Erode(img, mask)
}

// Dilate replaces every pixel by the maximum over its disk neighbourhood.
func Dilate(img *mat.Dense, radius float64, mask *Mask) (*mat.Dense, error) {
	return Disk(radius).Dilate(img, mask)
}

// Open is an erosion followed by a dilation with the same disk. It removes
// bright structures smaller than the disk.
func Open(img *mat.Dense, radius float64, mask *Mask) (*mat.Dense, error) {
	return Disk(radius).Open(img, mask)
}

// Close is a dilation followed by an erosion with the same disk. It removes
// dark structures smaller than the disk.
func Close(img *mat.Dense, radius float64, mask *Mask) (*mat.Dense, error) {
	return Disk(radius).Close(img, mask)
}

// WhiteTopHat returns img - Open(img), which isolates bright structures
// smaller than the disk.
func WhiteTopHat(img *mat.Dense, radius float64, mask *Mask) (*mat.Dense, error) {
	return Disk(radius).WhiteTopHat(img, mask)
}

// BlackTopHat returns Close(img) - img, which isolates dark structures
// smaller than the disk.
func BlackTopHat(img *mat.Dense, radius float64, mask *Mask) (*mat.Dense, error) {
	return Disk(radius).BlackTopHat(img, mask)
}

// Erode applies a minimum filter over the element.
//
// Neighbours outside the image or excluded by the mask are skipped. Pixels
// excluded by the mask keep their input value.
func (se StructuringElement) Erode(img *mat.Dense, mask *Mask) (*mat.Dense, error) {
	return se.rankFilter(img, mask, func(candidate, current float64) bool {
		return candidate < current
	})
}

// Dilate applies a maximum filter over the element with the same
// neighbourhood rules as Erode.
func (se StructuringElement) Dilate(img *mat.Dense, mask *Mask) (*mat.Dense, error) {
	return se.rankFilter(img, mask, func(candidate, current float64) bool {
		return candidate > current
	})
}

// Open erodes then dilates.
func (se StructuringElement) Open(img *mat.Dense, mask *Mask) (*mat.Dense, error) {
	eroded, err := se.Erode(img, mask)
	if err != nil {
		return nil, err
	}
	return se.Dilate(eroded, mask)
}

// Close dilates then erodes.
func (se StructuringElement) Close(img *mat.Dense, mask *Mask) (*mat.Dense, error) {
	dilated, err := se.Dilate(img, mask)
	if err != nil {
		return nil, err
	}
	return se.Erode(dilated, mask)
}

// WhiteTopHat returns img - Open(img).
func (se StructuringElement) WhiteTopHat(img *mat.Dense, mask *Mask) (*mat.Dense, error) {
	opened, err := se.Open(img, mask)
	if err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Sub(img, opened)
	return &out, nil
}

// BlackTopHat returns Close(img) - img.
func (se StructuringElement) BlackTopHat(img *mat.Dense, mask *Mask) (*mat.Dense, error) {
	closed, err := se.Close(img, mask)
	if err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Sub(closed, img)
	return &out, nil
}

// rankFilter writes, for every included pixel, the neighbour value preferred
// by better. The centre is always part of the element, so the search starts
// from the pixel's own value.
func (se StructuringElement) rankFilter(img *mat.Dense, mask *Mask, better func(candidate, current float64) bool) (*mat.Dense, error) {
	if err := CheckShape(img, mask); err != nil {
		return nil, err
	}

	rows, cols := img.Dims()
	src := img.RawMatrix()
	out := mat.NewDense(rows, cols, nil)
	dst := out.RawMatrix().Data

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := src.Data[r*src.Stride+c]
			if mask.includes(r, c) {
				for _, o := range se.Offsets {
					rr, cc := r+o.DY, c+o.DX
					if rr < 0 || rr >= rows || cc < 0 || cc >= cols || !mask.includes(rr, cc) {
						continue
					}
					if n := src.Data[rr*src.Stride+cc]; better(n, v) {
						v = n
					}
				}
			}
			dst[r*cols+c] = v
		}
	}
	return out, nil
}
