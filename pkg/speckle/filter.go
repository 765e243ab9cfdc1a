// Package speckle enhances or suppresses small bright or dark structures in
// grayscale images.
//
// Suppress applies a grayscale opening, which reduces everything within the
// object radius to the local minimum and then restores objects larger than
// the radius to an approximation of their former shape. Enhance selects one
// of three transforms:
//
//   - Speckles: the white top-hat, image minus its opening.
//   - Neurites: image plus white top-hat minus black top-hat, which brings
//     out lines as wide as the object size.
//   - Dark holes: the reconstruction filter in EnhanceDarkHoles.
//
// Filter is a pure function. It never modifies its arguments and holds no
// state between calls, so calls on different images may run concurrently.
package speckle

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"specklefilter/pkg/morphology"
)

// Filter applies the operation selected by p to img and returns a new
// image of the same shape.
//
// When mask is non-nil, pixels where it is false are excluded from every
// neighbourhood computation and the output at those positions is the
// original input value.
func Filter(img *mat.Dense, mask *morphology.Mask, p Params) (*mat.Dense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := morphology.CheckShape(img, mask); err != nil {
		return nil, &InvariantError{Condition: err.Error(), Err: err}
	}

	source := mat.DenseCopyOf(img)
	radius := p.Radius()

	var (
		result *mat.Dense
		err    error
	)
	switch p.Method {
	case Enhance:
		switch p.EnhanceMethod {
		case Speckles:
			result, err = morphology.WhiteTopHat(source, radius, mask)
		case Neurites:
			result, err = enhanceNeurites(source, radius, mask)
		case DarkHoles:
			minRadius, maxRadius := p.HoleSize.Radii()
			result, err = EnhanceDarkHoles(source, minRadius, maxRadius, mask)
		default:
			return nil, &ConfigurationError{Field: "enhance method", Value: p.EnhanceMethod.String()}
		}
	case Suppress:
		result, err = morphology.Open(source, radius, mask)
	default:
		return nil, &ConfigurationError{Field: "method", Value: p.Method.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("speckle: %s: %w", p, err)
	}

	return restoreMasked(result, source, mask), nil
}

// enhanceNeurites computes 3*img - Open(img) - Close(img) clamped to [0,1].
// This is img + white top-hat - black top-hat.
func enhanceNeurites(img *mat.Dense, radius float64, mask *morphology.Mask) (*mat.Dense, error) {
	se := morphology.Disk(radius)
	opened, err := se.Open(img, mask)
	if err != nil {
		return nil, err
	}
	closed, err := se.Close(img, mask)
	if err != nil {
		return nil, err
	}

	var out mat.Dense
	out.Scale(3, img)
	out.Sub(&out, opened)
	out.Sub(&out, closed)
	out.Apply(func(_, _ int, v float64) float64 {
		return clamp01(v)
	}, &out)
	return &out, nil
}

// restoreMasked returns a copy of result whose mask-false pixels hold the
// source values. result and source are left untouched.
func restoreMasked(result, source *mat.Dense, mask *morphology.Mask) *mat.Dense {
	out := mat.DenseCopyOf(result)
	if mask == nil {
		return out
	}
	rows, cols := out.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !mask.At(r, c) {
				out.Set(r, c, source.At(r, c))
			}
		}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < 0:
		return 0
	}
	return v
}
