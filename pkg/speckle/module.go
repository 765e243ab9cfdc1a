package speckle

import (
	"fmt"

	"specklefilter/internal/models"
)

// Module binds a parameter set to named input and output images.
type Module struct {
	// InputImage is the name of the image to filter.
	InputImage string

	// OutputImage is the name given to the filtered image.
	OutputImage string

	Params Params
}

// NewModule creates a module with the default parameters.
func NewModule(input, output string) *Module {
	return &Module{
		InputImage:  input,
		OutputImage: output,
		Params:      DefaultParams(),
	}
}

// Run filters the input image of set and adds the result under the output
// name. The output inherits the input's mask.
func (m *Module) Run(set *models.ImageSet) (*models.Image, error) {
	src, err := set.Get(m.InputImage)
	if err != nil {
		return nil, err
	}

	pixels, err := Filter(src.Pixels, src.Mask, m.Params)
	if err != nil {
		return nil, fmt.Errorf("filtering %q: %w", m.InputImage, err)
	}

	out := src.Derive(pixels, m.InputImage)
	if err := set.Add(m.OutputImage, out); err != nil {
		return nil, err
	}
	return out, nil
}
