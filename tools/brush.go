package tools

import (
	"image/color"
	"math"

	"canvascrafters/core"
	"canvascrafters/raster"
)

// Eyedropper reads the pixel color at a point. The second return is false
// when the point is outside the surface. Causes no mutation.
func Eyedropper(src *raster.Surface, at core.Point) (color.RGBA, bool) {
	if !src.In(at.X, at.Y) {
		return color.RGBA{}, false
	}
	return src.At(at.X, at.Y), true
}

// StampStroke renders one pointer-move segment of a freehand stroke. The
// brush is stamped at every step of the line between the two samples, so fast
// pointer movement leaves no gaps.
func StampStroke(dst *raster.Surface, from, to core.Point, p Params) {
	walkLine(from.X, from.Y, to.X, to.Y, func(x, y int) {
		stampBrush(dst, x, y, p)
	})
}

// stampBrush applies one brush footprint centered at (cx, cy). Each brush
// kind is its own compositing strategy; the eraser ignores color and blend
// mode entirely and writes transparency.
func stampBrush(dst *raster.Surface, cx, cy int, p Params) {
	radius := p.Size / 2
	if radius < 0 {
		radius = 0
	}

	switch p.Kind {
	case KindEraser:
		stampCircle(dst, cx, cy, radius, func(x, y int, dist float64) {
			dst.Set(x, y, color.RGBA{})
		})
	case KindPencil:
		// Hard single-pixel-ish core, no falloff.
		if radius > 1 {
			radius = 1
		}
		alpha := p.Opacity
		stampCircle(dst, cx, cy, radius, func(x, y int, dist float64) {
			blendPixel(dst, x, y, p.Color, alpha, p.Blend)
		})
	case KindBrush:
		hardness := p.Hardness
		if hardness <= 0 {
			hardness = 0.8
		}
		stampCircle(dst, cx, cy, radius, func(x, y int, dist float64) {
			blendPixel(dst, x, y, p.Color, p.Opacity*edgeFalloff(dist, radius, hardness), p.Blend)
		})
	case KindMarker:
		// Flat translucent ink. Repeated stamps darken toward the cap.
		stampCircle(dst, cx, cy, radius+1, func(x, y int, dist float64) {
			blendPixel(dst, x, y, p.Color, p.Opacity*0.45, p.Blend)
		})
	case KindChalk:
		stampCircle(dst, cx, cy, radius, func(x, y int, dist float64) {
			if speckle(x, y) < 0.6 {
				blendPixel(dst, x, y, p.Color, p.Opacity*0.9, p.Blend)
			}
		})
	case KindWatercolor:
		stampCircle(dst, cx, cy, radius+1, func(x, y int, dist float64) {
			blendPixel(dst, x, y, p.Color, p.Opacity*0.12*edgeFalloff(dist, radius+1, 0.3), p.Blend)
		})
	case KindAirbrush:
		flow := p.Flow
		if flow <= 0 {
			flow = 0.5
		}
		stampCircle(dst, cx, cy, radius, func(x, y int, dist float64) {
			if speckle(x, y) < flow {
				blendPixel(dst, x, y, p.Color, p.Opacity*edgeFalloff(dist, radius, 0.1), p.Blend)
			}
		})
	case KindOil:
		stampCircle(dst, cx, cy, radius+1, func(x, y int, dist float64) {
			blendPixel(dst, x, y, p.Color, p.Opacity, p.Blend)
		})
	case KindTexture:
		stampCircle(dst, cx, cy, radius, func(x, y int, dist float64) {
			if (x+y)%3 != 0 {
				blendPixel(dst, x, y, p.Color, p.Opacity*0.8, p.Blend)
			}
		})
	default:
		stampCircle(dst, cx, cy, radius, func(x, y int, dist float64) {
			blendPixel(dst, x, y, p.Color, p.Opacity, p.Blend)
		})
	}
}

// stampCircle visits every pixel of the disc of the given radius, reporting
// the distance from the center. Out-of-bounds pixels are skipped by the
// surface itself.
func stampCircle(dst *raster.Surface, cx, cy, radius int, visit func(x, y int, dist float64)) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			visit(cx+dx, cy+dy, math.Sqrt(float64(dx*dx+dy*dy)))
		}
	}
}

// edgeFalloff shapes brush softness: 1 inside the hard core, easing to 0 at
// the rim. hardness is the fraction of the radius that stays fully opaque.
func edgeFalloff(dist float64, radius int, hardness float64) float64 {
	if radius <= 0 {
		return 1
	}
	core := hardness * float64(radius)
	if dist <= core {
		return 1
	}
	span := float64(radius) - core
	if span <= 0 {
		return 1
	}
	t := (dist - core) / span
	if t >= 1 {
		return 0
	}
	return 1 - t*t
}

// speckle is a deterministic pseudo-random value in [0, 1) derived from the
// pixel position. Chalk and airbrush grain must replay identically on every
// collaborator's surface, so real randomness is off the table.
func speckle(x, y int) float64 {
	h := uint32(x)*0x85ebca6b ^ uint32(y)*0xc2b2ae35
	h ^= h >> 13
	h *= 0x27d4eb2f
	h ^= h >> 15
	return float64(h&0xffff) / 65536.0
}

// blendPixel composites the tool color onto one pixel at the given alpha
// using the configured blend mode.
func blendPixel(dst *raster.Surface, x, y int, col color.RGBA, alpha float64, mode BlendMode) {
	if alpha <= 0 || !dst.In(x, y) {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	base := dst.At(x, y)
	src := col
	switch mode {
	case BlendMultiply:
		src = color.RGBA{
			R: mulChannel(col.R, base.R),
			G: mulChannel(col.G, base.G),
			B: mulChannel(col.B, base.B),
			A: col.A,
		}
	case BlendScreen:
		src = color.RGBA{
			R: screenChannel(col.R, base.R),
			G: screenChannel(col.G, base.G),
			B: screenChannel(col.B, base.B),
			A: col.A,
		}
	}
	src.A = uint8(float64(src.A) * alpha)
	dst.Set(x, y, raster.CompositeOver(src, base))
}

func mulChannel(a, b uint8) uint8 {
	return uint8(uint32(a) * uint32(b) / 255)
}

func screenChannel(a, b uint8) uint8 {
	return uint8(255 - uint32(255-a)*uint32(255-b)/255)
}

// walkLine visits every integer point on the segment using Bresenham's
// algorithm, endpoints included.
func walkLine(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
