package models

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"specklefilter/pkg/morphology"
)

var (
	// ErrImageNotFound is returned when an image set has no image of the requested name.
	ErrImageNotFound = errors.New("image not found")

	// ErrDuplicateImage is returned when an image name is already taken.
	ErrDuplicateImage = errors.New("image name already in use")
)

// Image is a grayscale image with an optional mask of valid pixels
type Image struct {
	// Pixels holds intensities normalized to [0,1], one row per image row
	Pixels *mat.Dense

	// Mask marks valid pixels; nil means every pixel is valid
	Mask *morphology.Mask

	// Source is the file the image was read from, if any
	Source string

	// Parent is the name of the image this one was derived from
	Parent string
}

// HasMask reports whether the image carries a mask
func (im *Image) HasMask() bool {
	return im.Mask != nil
}

// Dims returns the height and width of the image
func (im *Image) Dims() (rows, cols int) {
	return im.Pixels.Dims()
}

// Derive creates a new image from pixels that inherits the mask of im
func (im *Image) Derive(pixels *mat.Dense, parentName string) *Image {
	return &Image{
		Pixels: pixels,
		Mask:   im.Mask.Clone(),
		Source: im.Source,
		Parent: parentName,
	}
}

// ImageSet holds the named images of one processing run.
// It is safe for concurrent use.
type ImageSet struct {
	mu     sync.RWMutex
	images map[string]*Image
}

// NewImageSet creates an empty image set
func NewImageSet() *ImageSet {
	return &ImageSet{images: make(map[string]*Image)}
}

// Get returns the image stored under name
func (s *ImageSet) Get(name string) (*Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrImageNotFound, name)
	}
	return img, nil
}

// Add stores img under name. Names are unique within a set.
func (s *ImageSet) Add(name string, img *Image) error {
	if img == nil || img.Pixels == nil {
		return fmt.Errorf("image %q has no pixel data", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.images[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateImage, name)
	}
	s.images[name] = img
	return nil
}

// Names returns the stored image names in sorted order
func (s *ImageSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.images))
	for name := range s.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
