package speckle

import (
	"fmt"
	"strconv"
	"strings"
)

// Method selects whether speckles are enhanced or suppressed.
type Method int

const (
	// Enhance produces an image largely composed of the selected structures.
	Enhance Method = iota
	// Suppress removes speckles with a grayscale opening.
	Suppress
)

// EnhanceMethod selects which kind of structure Enhance targets.
type EnhanceMethod int

const (
	// Speckles are small areas brighter than their neighbourhood.
	Speckles EnhanceMethod = iota
	// Neurites are lines whose width is the object size.
	Neurites
	// DarkHoles are dark roundish regions inside brighter rings.
	DarkHoles
)

// Setting names, as shown to users and stored in configuration files.
const (
	MethodEnhanceName   = "Enhance"
	MethodSuppressName  = "Suppress"
	SpecklesName        = "Speckles"
	NeuritesName        = "Neurites"
	DarkHolesName       = "Dark holes"
	DefaultObjectSize   = 10
	DefaultHoleSizeMin  = 1
	DefaultHoleSizeMax  = 10
	DefaultOutputName   = "FilteredBlue"
	DefaultInputName    = "None"
)

func (m Method) String() string {
	switch m {
	case Enhance:
		return MethodEnhanceName
	case Suppress:
		return MethodSuppressName
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

func (e EnhanceMethod) String() string {
	switch e {
	case Speckles:
		return SpecklesName
	case Neurites:
		return NeuritesName
	case DarkHoles:
		return DarkHolesName
	default:
		return fmt.Sprintf("EnhanceMethod(%d)", int(e))
	}
}

// ParseMethod maps a setting name to a Method. Matching ignores case.
func ParseMethod(s string) (Method, error) {
	switch {
	case strings.EqualFold(s, MethodEnhanceName):
		return Enhance, nil
	case strings.EqualFold(s, MethodSuppressName):
		return Suppress, nil
	}
	return 0, &ConfigurationError{Field: "method", Value: s}
}

// ParseEnhanceMethod maps a setting name to an EnhanceMethod. Matching
// ignores case, and "DarkHoles" is accepted alongside "Dark holes".
func ParseEnhanceMethod(s string) (EnhanceMethod, error) {
	switch {
	case strings.EqualFold(s, SpecklesName):
		return Speckles, nil
	case strings.EqualFold(s, NeuritesName):
		return Neurites, nil
	case strings.EqualFold(s, DarkHolesName), strings.EqualFold(s, "DarkHoles"):
		return DarkHoles, nil
	}
	return 0, &ConfigurationError{Field: "enhance method", Value: s}
}

// HoleSizeRange bounds the diameters of the dark holes to enhance.
type HoleSizeRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ParseHoleSizeRange reads the "min,max" form used by stored settings.
func ParseHoleSizeRange(s string) (HoleSizeRange, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return HoleSizeRange{}, fmt.Errorf("speckle: hole size range %q must have the form min,max", s)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return HoleSizeRange{}, fmt.Errorf("speckle: hole size minimum: %w", err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return HoleSizeRange{}, fmt.Errorf("speckle: hole size maximum: %w", err)
	}
	return HoleSizeRange{Min: lo, Max: hi}, nil
}

func (h HoleSizeRange) String() string {
	return fmt.Sprintf("%d,%d", h.Min, h.Max)
}

// Radii converts hole diameters to the reconstruction step range.
func (h HoleSizeRange) Radii() (minRadius, maxRadius int) {
	minRadius = h.Min / 2
	if minRadius < 1 {
		minRadius = 1
	}
	maxRadius = (h.Max + 1) / 2
	return minRadius, maxRadius
}

// Validate checks the ordering invariant of the range.
func (h HoleSizeRange) Validate() error {
	if h.Min > h.Max {
		return &InvariantError{Condition: fmt.Sprintf("hole size minimum %d exceeds maximum %d", h.Min, h.Max)}
	}
	return nil
}

// Params is the parameter set for one filter call.
type Params struct {
	Method        Method
	EnhanceMethod EnhanceMethod

	// ObjectSize is the diameter of the largest speckle or neurite.
	ObjectSize int

	// HoleSize is only used for DarkHoles.
	HoleSize HoleSizeRange
}

// DefaultParams returns the module defaults: enhance speckles of size 10.
func DefaultParams() Params {
	return Params{
		Method:        Enhance,
		EnhanceMethod: Speckles,
		ObjectSize:    DefaultObjectSize,
		HoleSize:      HoleSizeRange{Min: DefaultHoleSizeMin, Max: DefaultHoleSizeMax},
	}
}

// Radius is the disk radius derived from the object size, matching
// Matlab's strel('disk').
func (p Params) Radius() float64 {
	return (float64(p.ObjectSize) - 1.0) / 2.0
}

// Validate performs the checks the filter owns. Range and type checks on
// the individual settings belong to the parameter source.
func (p Params) Validate() error {
	return p.HoleSize.Validate()
}

func (p Params) String() string {
	if p.Method != Enhance {
		return fmt.Sprintf("%s (size %d)", p.Method, p.ObjectSize)
	}
	if p.EnhanceMethod == DarkHoles {
		return fmt.Sprintf("%s %s (holes %s)", p.Method, p.EnhanceMethod, p.HoleSize)
	}
	return fmt.Sprintf("%s %s (size %d)", p.Method, p.EnhanceMethod, p.ObjectSize)
}
