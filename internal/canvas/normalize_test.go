package canvas

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestContainFit_WideBoxPillarboxes(t *testing.T) {
	// 4:3 bitmap in a very wide box: full height, centered horizontally
	fit := ContainFit(2880, 1080, 1440, 1080)

	if !almostEqual(fit.W, 1440) || !almostEqual(fit.H, 1080) {
		t.Fatalf("want 1440x1080, got %vx%v", fit.W, fit.H)
	}

	if !almostEqual(fit.X, 720) || !almostEqual(fit.Y, 0) {
		t.Fatalf("want offset (720,0), got (%v,%v)", fit.X, fit.Y)
	}
}

func TestContainFit_TallBoxLetterboxes(t *testing.T) {
	fit := ContainFit(720, 1080, 1440, 1080)

	if !almostEqual(fit.W, 720) || !almostEqual(fit.H, 540) {
		t.Fatalf("want 720x540, got %vx%v", fit.W, fit.H)
	}

	if !almostEqual(fit.X, 0) || !almostEqual(fit.Y, 270) {
		t.Fatalf("want offset (0,270), got (%v,%v)", fit.X, fit.Y)
	}
}

func TestContainFit_PreservesAspectRatio(t *testing.T) {
	boxes := [][2]float64{{100, 900}, {1440, 1080}, {333, 77}, {2000, 2000}}

	for _, box := range boxes {
		fit := ContainFit(box[0], box[1], 1440, 1080)

		if fit.W <= 0 || fit.H <= 0 {
			t.Fatalf("box %v: degenerate fit %v", box, fit)
		}

		if !almostEqual(fit.W/fit.H, 1440.0/1080.0) {
			t.Fatalf("box %v: aspect ratio broken, got %v", box, fit.W/fit.H)
		}

		if fit.W > box[0]+1e-9 || fit.H > box[1]+1e-9 {
			t.Fatalf("box %v: fit %v exceeds box", box, fit)
		}
	}
}

func TestContainFit_ZeroBoxIsZeroRect(t *testing.T) {
	fit := ContainFit(0, 0, 1440, 1080)

	if fit != (FitRect{}) {
		t.Fatalf("want zero rect, got %v", fit)
	}
}

func TestNormalizePoint_CornersMapToBitmapCorners(t *testing.T) {
	// box (10,20) 720x540 fully filled by the 1440x1080 bitmap (same ratio)
	x, y := NormalizePoint(10, 20, 720, 540, 1440, 1080, 10, 20)
	if !almostEqual(x, 0) || !almostEqual(y, 0) {
		t.Fatalf("top-left: want (0,0), got (%v,%v)", x, y)
	}

	x, y = NormalizePoint(10, 20, 720, 540, 1440, 1080, 730, 560)
	if !almostEqual(x, 1440) || !almostEqual(y, 1080) {
		t.Fatalf("bottom-right: want (1440,1080), got (%v,%v)", x, y)
	}
}

func TestNormalizePoint_AccountsForLetterboxOffset(t *testing.T) {
	// wide box: fit is 1440x1080 at x offset 720
	x, y := NormalizePoint(0, 0, 2880, 1080, 1440, 1080, 720, 0)

	if !almostEqual(x, 0) || !almostEqual(y, 0) {
		t.Fatalf("fit origin should map to (0,0), got (%v,%v)", x, y)
	}

	x, y = NormalizePoint(0, 0, 2880, 1080, 1440, 1080, 720+1440, 1080)
	if !almostEqual(x, 1440) || !almostEqual(y, 1080) {
		t.Fatalf("fit corner should map to (1440,1080), got (%v,%v)", x, y)
	}
}

func TestNormalizePoint_OutOfBoundsIsNotClamped(t *testing.T) {
	x, y := NormalizePoint(0, 0, 720, 540, 1440, 1080, -10, -10)

	if x >= 0 || y >= 0 {
		t.Fatalf("out-of-box point must stay negative, got (%v,%v)", x, y)
	}
}
