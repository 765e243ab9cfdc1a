package morphology

import (
	"errors"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// randomImage creates a reproducible image with values in [0,1)
func randomImage(rows, cols int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

// flatImage creates an image where every pixel has the same value
func flatImage(rows, cols int, value float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = value
	}
	return mat.NewDense(rows, cols, data)
}

// TestDiskSizes verifies the strel('disk') radius convention
func TestDiskSizes(t *testing.T) {
	testCases := []struct {
		radius   float64
		expected int
	}{
		{-1, 1},
		{0, 1},
		{0.5, 1},
		{1, 5},
		{1.5, 9},
		{2, 13},
		{4.5, 69},
	}

	for _, tc := range testCases {
		se := Disk(tc.radius)
		if se.Size() != tc.expected {
			t.Errorf("Disk(%v): expected %d offsets, got %d", tc.radius, tc.expected, se.Size())
		}
		if !se.Contains(0, 0) {
			t.Errorf("Disk(%v) does not contain the centre", tc.radius)
		}
	}

	cross := Disk(1)
	if cross.Contains(1, 1) {
		t.Errorf("Unit disk should not contain diagonal neighbours")
	}
	if !cross.Contains(-1, 0) || !cross.Contains(0, 1) {
		t.Errorf("Unit disk should contain 4-connected neighbours")
	}
}

// TestErodeDilateSinglePixel checks min/max filtering around an isolated pixel
func TestErodeDilateSinglePixel(t *testing.T) {
	img := mat.NewDense(5, 5, nil)
	img.Set(2, 2, 1)

	eroded, err := Erode(img, 1, nil)
	if err != nil {
		t.Fatalf("Erode failed: %v", err)
	}
	if v := mat.Max(eroded); v != 0 {
		t.Errorf("Expected erosion to remove the pixel, max is %f", v)
	}

	dilated, err := Dilate(img, 1, nil)
	if err != nil {
		t.Fatalf("Dilate failed: %v", err)
	}
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			want := 0.0
			if Disk(1).Contains(r-2, c-2) {
				want = 1
			}
			if got := dilated.At(r, c); got != want {
				t.Errorf("Dilate at (%d,%d): expected %f, got %f", r, c, want, got)
			}
		}
	}
}

// TestErodeBorder verifies that out-of-bounds neighbours are ignored
func TestErodeBorder(t *testing.T) {
	img := flatImage(4, 4, 0.7)
	eroded, err := Erode(img, 2, nil)
	if err != nil {
		t.Fatalf("Erode failed: %v", err)
	}
	if !mat.Equal(img, eroded) {
		t.Errorf("Erosion of a flat image should leave it unchanged at the border")
	}
}

// TestOpeningClosingBounds checks Open <= img <= Close pointwise
func TestOpeningClosingBounds(t *testing.T) {
	for _, radius := range []float64{0, 1, 1.5, 2, 3.5} {
		img := randomImage(17, 13, int64(radius*10)+1)

		opened, err := Open(img, radius, nil)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		closed, err := Close(img, radius, nil)
		if err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		rows, cols := img.Dims()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				v := img.At(r, c)
				if opened.At(r, c) > v {
					t.Fatalf("radius %v: opening exceeds image at (%d,%d)", radius, r, c)
				}
				if closed.At(r, c) < v {
					t.Fatalf("radius %v: closing below image at (%d,%d)", radius, r, c)
				}
			}
		}
	}
}

// TestOpeningClosingIdempotent checks Open(Open(x)) == Open(x) and the same for Close
func TestOpeningClosingIdempotent(t *testing.T) {
	mask := NewMask(15, 15)
	for r := 4; r < 9; r++ {
		mask.Set(r, 6, false)
	}

	for _, m := range []*Mask{nil, mask} {
		img := randomImage(15, 15, 42)
		se := Disk(2)

		once, err := se.Open(img, m)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		twice, err := se.Open(once, m)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if !mat.Equal(once, twice) {
			t.Errorf("Opening is not idempotent (mask=%v)", m != nil)
		}

		once, err = se.Close(img, m)
		if err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		twice, err = se.Close(once, m)
		if err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if !mat.Equal(once, twice) {
			t.Errorf("Closing is not idempotent (mask=%v)", m != nil)
		}
	}
}

// TestTopHatsNonNegative verifies both top-hats never go below zero
func TestTopHatsNonNegative(t *testing.T) {
	img := randomImage(20, 20, 7)

	white, err := WhiteTopHat(img, 1.5, nil)
	if err != nil {
		t.Fatalf("WhiteTopHat failed: %v", err)
	}
	if v := mat.Min(white); v < 0 {
		t.Errorf("White top-hat has negative value %f", v)
	}

	black, err := BlackTopHat(img, 1.5, nil)
	if err != nil {
		t.Fatalf("BlackTopHat failed: %v", err)
	}
	if v := mat.Min(black); v < 0 {
		t.Errorf("Black top-hat has negative value %f", v)
	}
}

// TestFullMaskMatchesNoMask verifies an all-true mask behaves like no mask
func TestFullMaskMatchesNoMask(t *testing.T) {
	img := randomImage(12, 9, 3)
	mask := NewMask(12, 9)

	ops := map[string]func(*mat.Dense, float64, *Mask) (*mat.Dense, error){
		"erode":    Erode,
		"dilate":   Dilate,
		"open":     Open,
		"close":    Close,
		"whiteTop": WhiteTopHat,
		"blackTop": BlackTopHat,
	}
	for name, op := range ops {
		plain, err := op(img, 2, nil)
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		masked, err := op(img, 2, mask)
		if err != nil {
			t.Fatalf("%s with mask failed: %v", name, err)
		}
		if !mat.Equal(plain, masked) {
			t.Errorf("%s: full mask output differs from unmasked output", name)
		}
	}
}

// TestMaskedPixelsExcluded verifies masked-out pixels neither spread nor change
func TestMaskedPixelsExcluded(t *testing.T) {
	img := mat.NewDense(5, 5, nil)
	img.Set(2, 2, 1)
	mask := NewMask(5, 5)
	mask.Set(2, 2, false)

	dilated, err := Dilate(img, 1, mask)
	if err != nil {
		t.Fatalf("Dilate failed: %v", err)
	}
	if v := dilated.At(2, 1); v != 0 {
		t.Errorf("Masked pixel leaked into neighbour: got %f", v)
	}
	if v := dilated.At(2, 2); v != 1 {
		t.Errorf("Masked pixel should keep its input value, got %f", v)
	}
}

// TestShapeMismatch verifies mask dimensions are checked
func TestShapeMismatch(t *testing.T) {
	img := flatImage(4, 4, 0.5)
	if _, err := Erode(img, 1, NewMask(4, 5)); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
	if _, err := Dilate(nil, 1, nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
	if _, err := NewMaskFrom(2, 2, []bool{true}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch from NewMaskFrom, got %v", err)
	}
}

// TestInputNotModified verifies that filters never write to their input
func TestInputNotModified(t *testing.T) {
	img := randomImage(10, 10, 11)
	orig := mat.DenseCopyOf(img)
	if _, err := Open(img, 2, nil); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := Close(img, 2, nil); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !mat.Equal(img, orig) {
		t.Errorf("Input image was modified")
	}
}

// TestStridedInput verifies filters work on matrix views
func TestStridedInput(t *testing.T) {
	big := randomImage(10, 10, 5)
	view := big.Slice(2, 8, 3, 9).(*mat.Dense)
	copied := mat.DenseCopyOf(view)

	fromView, err := Open(view, 1, nil)
	if err != nil {
		t.Fatalf("Open on view failed: %v", err)
	}
	fromCopy, err := Open(copied, 1, nil)
	if err != nil {
		t.Fatalf("Open on copy failed: %v", err)
	}
	if !mat.Equal(fromView, fromCopy) {
		t.Errorf("Opening a view differs from opening a copy")
	}
}

func BenchmarkOpen(b *testing.B) {
	img := randomImage(256, 256, 1)
	se := Disk(4.5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := se.Open(img, nil); err != nil {
			b.Fatal(err)
		}
	}
}
