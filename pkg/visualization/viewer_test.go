package visualization

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"specklefilter/pkg/imageio"
)

// flat creates a matrix where every pixel has the same value
func flat(rows, cols int, value float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = value
	}
	return mat.NewDense(rows, cols, data)
}

// TestCompose verifies panel placement and the separator
func TestCompose(t *testing.T) {
	viewer := NewViewer(2)
	if err := viewer.AddPanel("left", flat(4, 3, 0.5)); err != nil {
		t.Fatalf("AddPanel failed: %v", err)
	}
	if err := viewer.AddPanel("right", flat(2, 5, 1)); err != nil {
		t.Fatalf("AddPanel failed: %v", err)
	}

	img, err := viewer.Compose()
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 3+2+5 || bounds.Dy() != 4 {
		t.Fatalf("Expected 10x4 canvas, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	if v := img.Gray16At(0, 0).Y; v != 32768 {
		t.Errorf("Expected left panel value 32768, got %d", v)
	}
	if v := img.Gray16At(3, 2).Y; v != 65535 {
		t.Errorf("Expected white separator, got %d", v)
	}
	if v := img.Gray16At(6, 1).Y; v != 65535 {
		t.Errorf("Expected right panel value 65535, got %d", v)
	}
	if v := img.Gray16At(6, 3).Y; v != 0 {
		t.Errorf("Expected black padding below the short panel, got %d", v)
	}
}

// TestComposeEmpty verifies an empty viewer is an error
func TestComposeEmpty(t *testing.T) {
	if _, err := NewViewer(1).Compose(); err == nil {
		t.Error("Expected error for empty viewer, got nil")
	}
	if err := NewViewer(1).AddPanel("nil", nil); err == nil {
		t.Error("Expected error for nil panel, got nil")
	}
}

// TestExtractPanel verifies single panels render with their own size
func TestExtractPanel(t *testing.T) {
	viewer := NewViewer(0)
	if err := viewer.AddPanel("only", flat(3, 2, 0)); err != nil {
		t.Fatalf("AddPanel failed: %v", err)
	}
	img, err := viewer.ExtractPanel(0)
	if err != nil {
		t.Fatalf("ExtractPanel failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 3 {
		t.Errorf("Expected 2x3 panel, got %dx%d", b.Dx(), b.Dy())
	}
	if _, err := viewer.ExtractPanel(1); err == nil {
		t.Error("Expected error for out of range panel, got nil")
	}
}

// TestSaveComparison verifies the two-panel figure is written to disk
func TestSaveComparison(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "compare.png")

	if err := SaveComparison(flat(5, 5, 0.2), flat(5, 5, 0.8), "DNA", "FilteredBlue", filename); err != nil {
		t.Fatalf("SaveComparison failed: %v", err)
	}

	loaded, err := imageio.LoadGrayscale(filename)
	if err != nil {
		t.Fatalf("Failed to read comparison: %v", err)
	}
	rows, cols := loaded.Dims()
	if rows != 5 || cols != 14 {
		t.Errorf("Expected 5x14 comparison, got %dx%d", rows, cols)
	}
}

// TestSavePanels verifies each panel is written with a readable name
func TestSavePanels(t *testing.T) {
	dir := t.TempDir()
	viewer := NewViewer(1)
	viewer.AddPanel("Original: DNA", flat(2, 2, 0.1))
	viewer.AddPanel("Filtered: Filtered Blue", flat(2, 2, 0.9))

	paths, err := viewer.SavePanels(dir)
	if err != nil {
		t.Fatalf("SavePanels failed: %v", err)
	}
	expected := []string{
		filepath.Join(dir, "panel_00_original_dna.png"),
		filepath.Join(dir, "panel_01_filtered_filtered_blue.png"),
	}
	for i, want := range expected {
		if paths[i] != want {
			t.Errorf("Expected %s, got %s", want, paths[i])
		}
		if _, err := os.Stat(want); err != nil {
			t.Errorf("Expected file %s: %v", want, err)
		}
	}
}
