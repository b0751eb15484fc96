package capture

import (
	"image"
	"math"
	"testing"
	"time"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// uniformFrame builds a frame where every pixel has the same gray value.
func uniformFrame(v uint8, w, h int) *Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = v
		img.Pix[i+1] = v
		img.Pix[i+2] = v
		img.Pix[i+3] = 255
	}
	return &Frame{Image: img, Captured: time.Now()}
}

// checkerFrame builds a high-contrast checkerboard, maximally sharp.
func checkerFrame(w, h int) *Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			if (x+y)%2 == 0 {
				v = 255
			}
			off := y*img.Stride + x*4
			img.Pix[off] = v
			img.Pix[off+1] = v
			img.Pix[off+2] = v
			img.Pix[off+3] = 255
		}
	}
	return &Frame{Image: img, Captured: time.Now()}
}

func TestGrayscaleLumaWeights(t *testing.T) {
	cases := []struct {
		r, g, b uint8
		want    uint8
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255}, // weights sum to 1
		{255, 0, 0, 76},      // 0.299*255 = 76.245
		{0, 255, 0, 149},     // 0.587*255 = 149.685
		{0, 0, 255, 29},      // 0.114*255 = 29.07
		{100, 100, 100, 100},
	}

	for _, tc := range cases {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i] = tc.r
			img.Pix[i+1] = tc.g
			img.Pix[i+2] = tc.b
			img.Pix[i+3] = 255
		}
		gray := rgbaToGray(img)
		for _, v := range gray.pix {
			if v != tc.want {
				t.Errorf("gray(%d,%d,%d): got %d, want %d", tc.r, tc.g, tc.b, v, tc.want)
				break
			}
		}
	}
}

func TestMotionZeroForIdenticalFrames(t *testing.T) {
	m := NewMeter(0.35)

	m.Sample(uniformFrame(100, 32, 24))
	s := m.Sample(uniformFrame(100, 32, 24))

	if s.Motion != 0 {
		t.Errorf("motion for identical frames: got %v, want 0", s.Motion)
	}
}

func TestMotionPositiveForDifferingFrames(t *testing.T) {
	m := NewMeter(0.35)

	m.Sample(uniformFrame(100, 32, 24))
	s := m.Sample(uniformFrame(110, 32, 24))

	// Raw motion is exactly 10; the first sample seeded the EMA at 0.
	want := 0.35 * 10
	if !floatEquals(s.Motion, want) {
		t.Errorf("motion after brightness step: got %v, want %v", s.Motion, want)
	}
	if s.Motion <= 0 {
		t.Error("motion must be strictly positive for differing frames")
	}
}

func TestMotionIgnoresSizeMismatch(t *testing.T) {
	m := NewMeter(0.35)

	m.Sample(uniformFrame(100, 32, 24))
	s := m.Sample(uniformFrame(200, 64, 48))

	if s.Motion != 0 {
		t.Errorf("motion across resolution change: got %v, want 0", s.Motion)
	}
}

func TestSharpnessUniformIsZero(t *testing.T) {
	m := NewMeter(0.35)
	s := m.Sample(uniformFrame(128, 32, 24))

	if s.Sharpness != 0 {
		t.Errorf("sharpness of flat frame: got %v, want 0", s.Sharpness)
	}
}

func TestSharpnessNonNegativeAndHighForCheckerboard(t *testing.T) {
	m := NewMeter(0.35)
	s := m.Sample(checkerFrame(32, 24))

	if s.Sharpness < 0 {
		t.Errorf("sharpness must be non-negative, got %v", s.Sharpness)
	}
	if s.Sharpness < 1000 {
		t.Errorf("checkerboard sharpness suspiciously low: %v", s.Sharpness)
	}
}

func TestEMASeedsOnFirstObservation(t *testing.T) {
	m := NewMeter(0.35)

	first := m.Sample(checkerFrame(32, 24))
	if first.Sharpness == 0 {
		t.Fatal("expected non-zero sharpness for checkerboard")
	}

	// Second identical frame: raw sharpness unchanged, so the EMA must
	// hold steady rather than drift toward a zero seed.
	second := m.Sample(checkerFrame(32, 24))
	if !floatEquals(first.Sharpness, second.Sharpness) {
		t.Errorf("EMA drifted on identical input: %v -> %v", first.Sharpness, second.Sharpness)
	}
}

func TestEMASmoothingWeight(t *testing.T) {
	m := NewMeter(0.35)

	flat := m.Sample(uniformFrame(128, 32, 24))
	if flat.Sharpness != 0 {
		t.Fatalf("flat sharpness: got %v, want 0", flat.Sharpness)
	}

	raw := laplacianVariance(rgbaToGray(checkerFrame(32, 24).Image))
	s := m.Sample(checkerFrame(32, 24))

	want := 0.35 * raw
	if math.Abs(s.Sharpness-want) > 1e-6 {
		t.Errorf("smoothed sharpness: got %v, want %v", s.Sharpness, want)
	}
}

func TestNilFrameLeavesStateUntouched(t *testing.T) {
	m := NewMeter(0.35)

	m.Sample(uniformFrame(100, 32, 24))
	if s := m.Sample(nil); s.Motion != 0 || s.Sharpness != 0 {
		t.Errorf("nil frame sample: got %+v, want zero", s)
	}

	// The previous-frame reference must survive the nil tick.
	s := m.Sample(uniformFrame(100, 32, 24))
	if s.Motion != 0 {
		t.Errorf("motion after nil tick: got %v, want 0", s.Motion)
	}
}
