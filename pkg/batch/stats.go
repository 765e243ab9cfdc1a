package batch

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"specklefilter/pkg/morphology"
)

// Stats summarizes one filtered image against its source
type Stats struct {
	// Mean and StdDev describe the filtered intensities
	Mean   float64
	StdDev float64

	// Min and Max are the filtered intensity range
	Min float64
	Max float64

	// MeanAbsChange is the mean absolute difference from the source
	MeanAbsChange float64

	// Changed counts pixels whose value differs from the source
	Changed int

	// Excluded counts pixels outside the mask
	Excluded int
}

// Summarize computes Stats for a filtered image. The two matrices must have
// the same shape.
func Summarize(original, filtered *mat.Dense, mask *morphology.Mask) Stats {
	o := mat.DenseCopyOf(original).RawMatrix().Data
	f := mat.DenseCopyOf(filtered).RawMatrix().Data

	var s Stats
	s.Mean, s.StdDev = stat.MeanStdDev(f, nil)
	s.Min = floats.Min(f)
	s.Max = floats.Max(f)
	s.MeanAbsChange = floats.Distance(f, o, 1) / float64(len(f))
	for i := range f {
		if f[i] != o[i] {
			s.Changed++
		}
	}
	if mask != nil {
		s.Excluded = len(f) - mask.Count()
	}
	return s
}

// Aggregate reports the mean and standard deviation of MeanAbsChange
// across results
func Aggregate(results []Result) (mean, stdDev float64) {
	if len(results) == 0 {
		return 0, 0
	}
	changes := make([]float64, len(results))
	for i, r := range results {
		changes[i] = r.Stats.MeanAbsChange
	}
	if len(changes) == 1 {
		return changes[0], 0
	}
	return stat.MeanStdDev(changes, nil)
}
