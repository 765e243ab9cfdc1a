// Package batch filters many images concurrently. Each image is loaded,
// registered in its own image set, filtered by a speckle.Module and written
// back to disk.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"specklefilter/internal/models"
	"specklefilter/pkg/imageio"
	"specklefilter/pkg/morphology"
	"specklefilter/pkg/speckle"
	"specklefilter/pkg/visualization"
)

// Job describes one image to filter
type Job struct {
	// Input is the image to filter
	Input string

	// Mask is an optional mask image; empty means no mask
	Mask string

	// Output is where the filtered image is written
	Output string

	// Comparison is where the side-by-side image is written, if requested
	Comparison string
}

// Result is the outcome of one job
type Result struct {
	Job     Job
	Stats   Stats
	Elapsed time.Duration
}

// Options configures a Runner
type Options struct {
	// Module names the images and holds the filter parameters
	Module speckle.Module

	// NumWorkers bounds how many images are processed at once
	NumWorkers int

	// SaveComparison enables writing Job.Comparison
	SaveComparison bool

	Logger zerolog.Logger
}

// Runner processes jobs with a bounded pool of goroutines
type Runner struct {
	opts Options
	log  zerolog.Logger
}

// NewRunner creates a runner. NumWorkers below 1 is treated as 1.
func NewRunner(opts Options) *Runner {
	if opts.NumWorkers < 1 {
		opts.NumWorkers = 1
	}
	return &Runner{
		opts: opts,
		log:  opts.Logger.With().Str("component", "batch").Logger(),
	}
}

// Run processes every job and returns results in job order. The first
// failure cancels the jobs that have not started yet.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	if len(jobs) == 0 {
		return nil, errors.New("no images to process")
	}

	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.NumWorkers)

	r.log.Info().
		Int("images", len(jobs)).
		Int("workers", r.opts.NumWorkers).
		Str("operation", r.opts.Module.Params.String()).
		Msg("starting batch")

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.process(job)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(job.Input), err)
			}
			results[i] = res
			r.log.Info().
				Str("image", filepath.Base(job.Input)).
				Dur("elapsed", res.Elapsed).
				Float64("mean", res.Stats.Mean).
				Float64("max", res.Stats.Max).
				Float64("meanAbsChange", res.Stats.MeanAbsChange).
				Int("excluded", res.Stats.Excluded).
				Msg("image filtered")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.log.Error().Err(err).Msg("batch failed")
		return nil, err
	}
	return results, nil
}

// process runs a single job
func (r *Runner) process(job Job) (Result, error) {
	start := time.Now()

	pixels, err := imageio.LoadGrayscale(job.Input)
	if err != nil {
		return Result{}, err
	}

	var mask *morphology.Mask
	if job.Mask != "" {
		mask, err = imageio.LoadMask(job.Mask)
		if err != nil {
			return Result{}, fmt.Errorf("loading mask: %w", err)
		}
	}

	module := r.opts.Module
	set := models.NewImageSet()
	src := &models.Image{Pixels: pixels, Mask: mask, Source: job.Input}
	if err := set.Add(module.InputImage, src); err != nil {
		return Result{}, err
	}

	out, err := module.Run(set)
	if err != nil {
		return Result{}, err
	}

	if err := imageio.Save(job.Output, out.Pixels); err != nil {
		return Result{}, err
	}
	if r.opts.SaveComparison && job.Comparison != "" {
		if err := visualization.SaveComparison(pixels, out.Pixels, module.InputImage, module.OutputImage, job.Comparison); err != nil {
			return Result{}, fmt.Errorf("saving comparison: %w", err)
		}
	}

	r.log.Debug().
		Str("image", filepath.Base(job.Input)).
		Strs("imageSet", set.Names()).
		Msg("image set complete")

	return Result{
		Job:     job,
		Stats:   Summarize(pixels, out.Pixels, mask),
		Elapsed: time.Since(start),
	}, nil
}

// DiscoverJobs lists the PNG and JPEG images in inputDir, pairs each with a
// mask named <base><maskSuffix><ext> when one exists, and plans outputs in
// outputDir. Mask files are not treated as inputs. Images are ordered by
// the number embedded in their names, then by name.
func DiscoverJobs(inputDir, outputDir, maskSuffix string) ([]Job, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() || !imageio.Supported(e.Name()) {
			continue
		}
		present[e.Name()] = true
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if maskSuffix != "" && strings.HasSuffix(base, maskSuffix) {
			continue
		}
		names = append(names, e.Name())
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no PNG or JPEG images found in %s", inputDir)
	}

	sort.Slice(names, func(i, j int) bool {
		ni, nj := extractNumber(names[i]), extractNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})

	jobs := make([]Job, 0, len(names))
	for _, name := range names {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		job := Job{
			Input:      filepath.Join(inputDir, name),
			Output:     filepath.Join(outputDir, base+"_filtered.png"),
			Comparison: filepath.Join(outputDir, base+"_comparison.png"),
		}
		if maskSuffix != "" && present[base+maskSuffix+ext] {
			job.Mask = filepath.Join(inputDir, base+maskSuffix+ext)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}
