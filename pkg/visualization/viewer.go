package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"specklefilter/pkg/imageio"
)

// Panel is one grayscale image shown by a Viewer
type Panel struct {
	// Title names the panel, e.g. "Original: DNA"
	Title string

	// Pixels holds intensities in [0,1]
	Pixels mat.Matrix
}

// Viewer lays out grayscale panels side by side, the way the filter's
// results are displayed next to their source
type Viewer struct {
	panels []Panel

	// gap is the width in pixels of the white separator between panels
	gap int
}

// NewViewer creates an empty viewer with the given separator width
func NewViewer(gap int) *Viewer {
	if gap < 0 {
		gap = 0
	}
	return &Viewer{gap: gap}
}

// AddPanel appends a panel to the right of the existing ones
func (v *Viewer) AddPanel(title string, pixels mat.Matrix) error {
	if pixels == nil {
		return fmt.Errorf("panel %q has no pixel data", title)
	}
	if r, c := pixels.Dims(); r == 0 || c == 0 {
		return fmt.Errorf("panel %q is empty", title)
	}
	v.panels = append(v.panels, Panel{Title: title, Pixels: pixels})
	return nil
}

// Panels returns the number of panels
func (v *Viewer) Panels() int {
	return len(v.panels)
}

// ExtractPanel renders a single panel as a 16-bit grayscale image
func (v *Viewer) ExtractPanel(index int) (image.Image, error) {
	if index < 0 || index >= len(v.panels) {
		return nil, fmt.Errorf("panel %d out of range (have %d)", index, len(v.panels))
	}
	return imageio.ToImage(v.panels[index].Pixels), nil
}

// Compose renders all panels into one image. Panels are top-aligned;
// shorter panels are padded with black.
func (v *Viewer) Compose() (*image.Gray16, error) {
	if len(v.panels) == 0 {
		return nil, fmt.Errorf("viewer has no panels")
	}

	width, height := 0, 0
	for i, p := range v.panels {
		r, c := p.Pixels.Dims()
		if i > 0 {
			width += v.gap
		}
		width += c
		if r > height {
			height = r
		}
	}

	canvas := image.NewGray16(image.Rect(0, 0, width, height))
	x := 0
	for i, p := range v.panels {
		if i > 0 {
			sep := image.Rect(x, 0, x+v.gap, height)
			draw.Draw(canvas, sep, image.NewUniform(color.White), image.Point{}, draw.Src)
			x += v.gap
		}
		panel := imageio.ToImage(p.Pixels)
		dst := image.Rect(x, 0, x+panel.Bounds().Dx(), panel.Bounds().Dy())
		draw.Draw(canvas, dst, panel, image.Point{}, draw.Src)
		x += panel.Bounds().Dx()
	}
	return canvas, nil
}

// Save writes the composed image; the format follows the extension
func (v *Viewer) Save(filename string) error {
	img, err := v.Compose()
	if err != nil {
		return err
	}
	return imageio.WriteImage(filename, img)
}

// SavePanels writes every panel to its own PNG file in outputDir
func (v *Viewer) SavePanels(outputDir string) ([]string, error) {
	paths := make([]string, 0, len(v.panels))
	for i := range v.panels {
		img, err := v.ExtractPanel(i)
		if err != nil {
			return nil, err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("panel_%02d_%s.png", i, slug(v.panels[i].Title)))
		if err := imageio.WriteImage(filename, img); err != nil {
			return nil, err
		}
		paths = append(paths, filename)
	}
	return paths, nil
}

// SaveComparison writes original and filtered side by side
func SaveComparison(original, filtered mat.Matrix, inputName, outputName, filename string) error {
	v := NewViewer(4)
	if err := v.AddPanel("Original: "+inputName, original); err != nil {
		return err
	}
	if err := v.AddPanel("Filtered: "+outputName, filtered); err != nil {
		return err
	}
	return v.Save(filename)
}

// slug turns a panel title into a file-name fragment
func slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteByte('_')
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
