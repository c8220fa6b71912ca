package tools

import (
	"testing"

	"canvascrafters/core"
	"canvascrafters/raster"
)

func shapeParams(k Kind) Params {
	return Params{Kind: k, Color: black, Size: 1, Opacity: 1}
}

func countInk(s *raster.Surface) int {
	n := 0
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.At(x, y) != white {
				n++
			}
		}
	}
	return n
}

func TestDrawLine(t *testing.T) {
	s := raster.New(20, 20, white)
	DrawLine(s, core.Point{X: 2, Y: 2}, core.Point{X: 17, Y: 2}, shapeParams(KindLine))
	for x := 2; x <= 17; x++ {
		if s.At(x, 2) != black {
			t.Errorf("line pixel (%d,2) missing", x)
		}
	}
	if s.At(2, 10) != white {
		t.Error("pixel off the line should be untouched")
	}
}

func TestDrawRectOutline(t *testing.T) {
	s := raster.New(20, 20, white)
	// Corners in "wrong" order; the rectangle must normalize them.
	DrawRect(s, core.Point{X: 15, Y: 12}, core.Point{X: 4, Y: 3}, shapeParams(KindRect))

	for x := 4; x <= 15; x++ {
		if s.At(x, 3) != black || s.At(x, 12) != black {
			t.Fatalf("horizontal edge missing at x=%d", x)
		}
	}
	for y := 3; y <= 12; y++ {
		if s.At(4, y) != black || s.At(15, y) != black {
			t.Fatalf("vertical edge missing at y=%d", y)
		}
	}
	if s.At(9, 7) != white {
		t.Error("rectangle interior should stay empty")
	}
}

func TestDrawCircleOutline(t *testing.T) {
	s := raster.New(41, 41, white)
	DrawCircle(s, core.Point{X: 20, Y: 20}, core.Point{X: 30, Y: 20}, shapeParams(KindCircle))

	// Cardinal points of a radius-10 circle.
	for _, pt := range []core.Point{{X: 30, Y: 20}, {X: 10, Y: 20}, {X: 20, Y: 30}, {X: 20, Y: 10}} {
		if s.At(pt.X, pt.Y) != black {
			t.Errorf("cardinal point %v missing from outline", pt)
		}
	}
	if s.At(20, 20) != white {
		t.Error("circle center should stay empty")
	}
}

func TestDrawPolygonClosed(t *testing.T) {
	s := raster.New(41, 41, white)
	DrawPolygon(s, core.Point{X: 20, Y: 20}, core.Point{X: 30, Y: 20}, shapeParams(KindPolygon))

	if s.At(30, 20) != black {
		t.Error("hexagon vertex at the drag point missing")
	}
	if countInk(s) < 30 {
		t.Error("hexagon outline looks too sparse")
	}
	if s.At(20, 20) != white {
		t.Error("polygon center should stay empty")
	}
}

func TestDrawStar(t *testing.T) {
	s := raster.New(41, 41, white)
	DrawStar(s, core.Point{X: 20, Y: 20}, core.Point{X: 20, Y: 5}, shapeParams(KindStar))

	if s.At(20, 5) != black {
		t.Error("outer star vertex missing")
	}
	if countInk(s) < 40 {
		t.Error("star outline looks too sparse")
	}
}

func TestDrawArrowHasHead(t *testing.T) {
	s := raster.New(30, 30, white)
	DrawArrow(s, core.Point{X: 2, Y: 15}, core.Point{X: 25, Y: 15}, shapeParams(KindArrow))

	for x := 2; x <= 25; x++ {
		if s.At(x, 15) != black {
			t.Fatalf("shaft pixel (%d,15) missing", x)
		}
	}
	// Head barbs slope away above and below the tip.
	above, below := false, false
	for y := 0; y < 15; y++ {
		for x := 15; x < 26; x++ {
			if s.At(x, y) != white {
				above = true
			}
		}
	}
	for y := 16; y < 30; y++ {
		for x := 15; x < 26; x++ {
			if s.At(x, y) != white {
				below = true
			}
		}
	}
	if !above || !below {
		t.Error("arrow head barbs missing")
	}
}

func TestCommitShapeIgnoresNonShapes(t *testing.T) {
	s := raster.New(10, 10, white)
	CommitShape(s, core.Point{X: 1, Y: 1}, core.Point{X: 8, Y: 8}, shapeParams(KindBrush))
	if countInk(s) != 0 {
		t.Error("non-shape kinds must not draw anything")
	}
}

func TestThickLineWidth(t *testing.T) {
	s := raster.New(20, 20, white)
	p := Params{Kind: KindLine, Color: black, Size: 5, Opacity: 1}
	DrawLine(s, core.Point{X: 3, Y: 10}, core.Point{X: 16, Y: 10}, p)

	for _, dy := range []int{-2, -1, 0, 1, 2} {
		if s.At(10, 10+dy) != black {
			t.Errorf("thick line missing coverage at dy=%d", dy)
		}
	}
	if s.At(10, 6) != white || s.At(10, 14) != white {
		t.Error("thick line wider than its size")
	}
}
