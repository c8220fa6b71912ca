package tools

import (
	"math"

	"canvascrafters/core"
	"canvascrafters/raster"
)

// Shape tools are committed once, from the pointer-down and pointer-up
// points. Live previews belong to the caller: render onto dst.Clone() while
// the pointer is still down and discard the clone on every move.

// CommitShape renders the shape for the given tool kind between two points.
// Non-shape kinds are ignored.
func CommitShape(dst *raster.Surface, from, to core.Point, p Params) {
	switch p.Kind {
	case KindLine:
		DrawLine(dst, from, to, p)
	case KindRect:
		DrawRect(dst, from, to, p)
	case KindCircle:
		DrawCircle(dst, from, to, p)
	case KindPolygon:
		DrawPolygon(dst, from, to, p)
	case KindStar:
		DrawStar(dst, from, to, p)
	case KindArrow:
		DrawArrow(dst, from, to, p)
	}
}

// DrawLine draws a straight stroke of the tool's width between two points.
func DrawLine(dst *raster.Surface, from, to core.Point, p Params) {
	thickLine(dst, from.X, from.Y, to.X, to.Y, p)
}

// DrawRect outlines the axis-aligned rectangle spanned by the two corners.
func DrawRect(dst *raster.Surface, from, to core.Point, p Params) {
	x0, x1 := order(from.X, to.X)
	y0, y1 := order(from.Y, to.Y)
	thickLine(dst, x0, y0, x1, y0, p)
	thickLine(dst, x1, y0, x1, y1, p)
	thickLine(dst, x1, y1, x0, y1, p)
	thickLine(dst, x0, y1, x0, y0, p)
}

// DrawCircle outlines the circle centered on the pointer-down point with the
// radius set by the drag distance, via the midpoint algorithm.
func DrawCircle(dst *raster.Surface, from, to core.Point, p Params) {
	r := int(math.Round(distance(from, to)))
	if r < 1 {
		r = 1
	}
	thick := p.Size
	if thick < 1 {
		thick = 1
	}
	start := -thick / 2
	for i := 0; i < thick; i++ {
		if rr := r + start + i; rr >= 0 {
			circleOutline(dst, from.X, from.Y, rr, p)
		}
	}
}

func circleOutline(dst *raster.Surface, cx, cy, r int, p Params) {
	x := r
	y := 0
	err := 1 - r
	for x >= y {
		pts := [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}}
		for _, pt := range pts {
			blendPixel(dst, cx+pt[0], cy+pt[1], p.Color, p.Opacity, p.Blend)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

// DrawPolygon outlines a regular hexagon centered on the pointer-down point,
// with a vertex at the pointer-up point.
func DrawPolygon(dst *raster.Surface, from, to core.Point, p Params) {
	regularPolygon(dst, from, to, 6, p)
}

func regularPolygon(dst *raster.Surface, center, vertex core.Point, sides int, p Params) {
	r := distance(center, vertex)
	if r < 1 {
		r = 1
	}
	base := math.Atan2(float64(vertex.Y-center.Y), float64(vertex.X-center.X))
	prev := polarPoint(center, r, base)
	for i := 1; i <= sides; i++ {
		angle := base + 2*math.Pi*float64(i)/float64(sides)
		next := polarPoint(center, r, angle)
		thickLine(dst, prev.X, prev.Y, next.X, next.Y, p)
		prev = next
	}
}

// DrawStar outlines a five-point star centered on the pointer-down point with
// an outer vertex at the pointer-up point. The inner radius is the standard
// 0.4 ratio of the outer.
func DrawStar(dst *raster.Surface, from, to core.Point, p Params) {
	outer := distance(from, to)
	if outer < 1 {
		outer = 1
	}
	inner := outer * 0.4
	base := math.Atan2(float64(to.Y-from.Y), float64(to.X-from.X))
	const points = 5
	prev := polarPoint(from, outer, base)
	for i := 1; i <= points*2; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		angle := base + math.Pi*float64(i)/float64(points)
		next := polarPoint(from, r, angle)
		thickLine(dst, prev.X, prev.Y, next.X, next.Y, p)
		prev = next
	}
}

// DrawArrow draws a line with a head at the pointer-up end.
func DrawArrow(dst *raster.Surface, from, to core.Point, p Params) {
	thickLine(dst, from.X, from.Y, to.X, to.Y, p)
	angle := math.Atan2(float64(to.Y-from.Y), float64(to.X-from.X))
	size := float64(6 + p.Size*2)
	for _, a := range []float64{angle + math.Pi/6, angle - math.Pi/6} {
		hx := to.X - int(math.Cos(a)*size)
		hy := to.Y - int(math.Sin(a)*size)
		thickLine(dst, to.X, to.Y, hx, hy, p)
	}
}

// thickLine stamps a filled square of the tool width at every Bresenham step.
func thickLine(dst *raster.Surface, x0, y0, x1, y1 int, p Params) {
	thick := p.Size
	if thick < 1 {
		thick = 1
	}
	r := thick / 2
	walkLine(x0, y0, x1, y1, func(x, y int) {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				blendPixel(dst, x+dx, y+dy, p.Color, p.Opacity, p.Blend)
			}
		}
	})
}

func polarPoint(center core.Point, r, angle float64) core.Point {
	return core.Point{
		X: center.X + int(math.Round(math.Cos(angle)*r)),
		Y: center.Y + int(math.Round(math.Sin(angle)*r)),
	}
}

func distance(a, b core.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func order(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
