package tools

import (
	"image/color"
	"testing"

	"canvascrafters/core"
	"canvascrafters/raster"
)

func opaque(p Params) Params {
	if p.Opacity == 0 {
		p.Opacity = 1
	}
	if p.Size == 0 {
		p.Size = 1
	}
	return p
}

func TestEyedropper(t *testing.T) {
	s := raster.New(5, 5, white)
	s.Set(2, 3, red)

	c, ok := Eyedropper(s, core.Point{X: 2, Y: 3})
	if !ok || c != red {
		t.Errorf("Eyedropper = %v, %v; want red, true", c, ok)
	}
	if _, ok := Eyedropper(s, core.Point{X: 5, Y: 5}); ok {
		t.Error("out-of-bounds eyedropper should report false")
	}
}

func TestPencilStrokeConnected(t *testing.T) {
	s := raster.New(20, 20, white)
	p := opaque(Params{Kind: KindPencil, Color: black, Size: 1})
	StampStroke(s, core.Point{X: 2, Y: 2}, core.Point{X: 17, Y: 9}, p)

	// Every Bresenham step of the segment must be inked.
	count := 0
	walkLine(2, 2, 17, 9, func(x, y int) {
		if s.At(x, y) != black {
			t.Errorf("gap in stroke at (%d,%d)", x, y)
		}
		count++
	})
	if count < 16 {
		t.Fatalf("walked only %d points, expected the full segment", count)
	}
}

func TestEraserWritesTransparency(t *testing.T) {
	s := raster.New(10, 10, white)
	p := Params{Kind: KindEraser, Color: red, Size: 4, Opacity: 1}
	StampStroke(s, core.Point{X: 5, Y: 5}, core.Point{X: 5, Y: 5}, p)

	if got := s.At(5, 5); got != (color.RGBA{}) {
		t.Errorf("erased pixel = %v, want fully transparent", got)
	}
	if got := s.At(0, 0); got != white {
		t.Errorf("far pixel = %v, want untouched", got)
	}
}

func TestBrushRespectsOpacity(t *testing.T) {
	s := raster.New(10, 10, white)
	p := Params{Kind: KindBrush, Color: black, Size: 4, Opacity: 0.5, Hardness: 1}
	StampStroke(s, core.Point{X: 5, Y: 5}, core.Point{X: 5, Y: 5}, p)

	got := s.At(5, 5)
	if got == black {
		t.Error("half-opacity brush should not paint full black")
	}
	if got == white {
		t.Error("half-opacity brush should leave visible ink")
	}
}

func TestBrushOutOfBoundsClipped(t *testing.T) {
	s := raster.New(10, 10, white)
	p := opaque(Params{Kind: KindBrush, Color: black, Size: 8})
	// Stamping at the corner must not panic and must ink the corner.
	StampStroke(s, core.Point{X: 0, Y: 0}, core.Point{X: 0, Y: 0}, p)
	if s.At(0, 0) == white {
		t.Error("corner pixel should be inked")
	}
}

func TestSpeckleDeterministic(t *testing.T) {
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			a := speckle(x, y)
			b := speckle(x, y)
			if a != b {
				t.Fatalf("speckle(%d,%d) not deterministic", x, y)
			}
			if a < 0 || a >= 1 {
				t.Fatalf("speckle(%d,%d) = %v, want [0,1)", x, y, a)
			}
		}
	}
}

func TestChalkStrokeReplaysIdentically(t *testing.T) {
	p := opaque(Params{Kind: KindChalk, Color: black, Size: 6})
	a := raster.New(30, 30, white)
	b := raster.New(30, 30, white)
	StampStroke(a, core.Point{X: 3, Y: 3}, core.Point{X: 25, Y: 20}, p)
	StampStroke(b, core.Point{X: 3, Y: 3}, core.Point{X: 25, Y: 20}, p)
	if !a.Equal(b) {
		t.Error("chalk grain must be identical across replays")
	}
}

func TestMultiplyBlendDarkens(t *testing.T) {
	s := raster.New(3, 3, color.RGBA{0x80, 0x80, 0x80, 0xff})
	p := Params{Kind: KindBrush, Color: color.RGBA{0x80, 0x80, 0x80, 0xff},
		Size: 1, Opacity: 1, Hardness: 1, Blend: BlendMultiply}
	StampStroke(s, core.Point{X: 1, Y: 1}, core.Point{X: 1, Y: 1}, p)

	got := s.At(1, 1)
	if got.R >= 0x80 {
		t.Errorf("multiply result R = %#x, want darker than base", got.R)
	}
}

func TestScreenBlendLightens(t *testing.T) {
	s := raster.New(3, 3, color.RGBA{0x80, 0x80, 0x80, 0xff})
	p := Params{Kind: KindBrush, Color: color.RGBA{0x80, 0x80, 0x80, 0xff},
		Size: 1, Opacity: 1, Hardness: 1, Blend: BlendScreen}
	StampStroke(s, core.Point{X: 1, Y: 1}, core.Point{X: 1, Y: 1}, p)

	got := s.At(1, 1)
	if got.R <= 0x80 {
		t.Errorf("screen result R = %#x, want lighter than base", got.R)
	}
}

func TestWalkLineEndpointsIncluded(t *testing.T) {
	var pts []core.Point
	walkLine(0, 0, 5, 3, func(x, y int) {
		pts = append(pts, core.Point{X: x, Y: y})
	})
	if len(pts) == 0 {
		t.Fatal("no points visited")
	}
	if pts[0] != (core.Point{X: 0, Y: 0}) {
		t.Errorf("first point = %v, want origin", pts[0])
	}
	if last := pts[len(pts)-1]; last != (core.Point{X: 5, Y: 3}) {
		t.Errorf("last point = %v, want (5,3)", last)
	}
}
