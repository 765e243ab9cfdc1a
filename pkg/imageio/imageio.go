// Package imageio converts between image files and normalized gonum matrices.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"specklefilter/pkg/morphology"
)

// ErrNotGrayscale is returned when an image has differing color channels.
var ErrNotGrayscale = errors.New("image is not grayscale")

// Supported reports whether the file extension is one imageio can decode.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// Decode reads a PNG or JPEG image from disk
func Decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// LoadGrayscale reads an image and converts it to a matrix with values in
// [0,1]. Color images are accepted only when every pixel has equal red,
// green and blue components.
func LoadGrayscale(path string) (*mat.Dense, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	pixels, err := ToMatrix(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pixels, nil
}

// ToMatrix converts a single image to a normalized matrix
func ToMatrix(img image.Image) (*mat.Dense, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, morphology.ErrEmptyImage
	}

	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if r != g || g != b {
				return nil, fmt.Errorf("%w: pixel (%d,%d)", ErrNotGrayscale, x, y)
			}
			// Convert 16-bit color to float64 (0-1 range)
			data[y*width+x] = float64(r) / 65535.0
		}
	}
	return mat.NewDense(height, width, data), nil
}

// LoadMask reads an image and marks every non-black pixel as included
func LoadMask(path string) (*morphology.Mask, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return ToMask(img)
}

// ToMask converts an image to a mask; any nonzero gray level is included
func ToMask(img image.Image) (*morphology.Mask, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, morphology.ErrEmptyImage
	}

	data := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			data[y*width+x] = g.Y > 0
		}
	}
	return morphology.NewMaskFrom(height, width, data)
}

// ToImage converts a matrix back to a 16-bit grayscale image. Values are
// clamped to [0,1] and rounded.
func ToImage(pixels mat.Matrix) *image.Gray16 {
	height, width := pixels.Dims()
	img := image.NewGray16(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := math.Max(0, math.Min(1, pixels.At(y, x)))
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(v * 65535.0))})
		}
	}
	return img
}

// Save writes pixels to path; the format follows the extension
func Save(path string, pixels mat.Matrix) error {
	return WriteImage(path, ToImage(pixels))
}

// WriteImage encodes img as PNG or JPEG depending on the extension of
// path, creating parent directories as needed.
func WriteImage(path string, img image.Image) error {
	var encode func(*os.File) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = func(f *os.File) error { return png.Encode(f, img) }
	case ".jpg", ".jpeg":
		encode = func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 90}) }
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	err = encode(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
