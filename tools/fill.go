package tools

import (
	"image"
	"image/color"
	"math"

	"canvascrafters/core"
	"canvascrafters/raster"
)

// FloodFill replaces the 4-connected region of pixels matching the seed's
// color (exact RGB, alpha ignored) with the fill color. An explicit stack
// keeps deep regions from blowing the call stack on large canvases. Seeding
// out of bounds, or filling a region with its own color, is a silent no-op.
func FloodFill(dst *raster.Surface, seed core.Point, fill color.RGBA) {
	if !dst.In(seed.X, seed.Y) {
		return
	}
	target := dst.At(seed.X, seed.Y)
	if sameRGB(target, fill) {
		return
	}

	w := dst.Width()
	visited := make([]bool, w*dst.Height())
	stack := []core.Point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !dst.In(p.X, p.Y) {
			continue
		}
		idx := p.Y*w + p.X
		if visited[idx] {
			continue
		}
		visited[idx] = true
		if !sameRGB(dst.At(p.X, p.Y), target) {
			continue
		}
		dst.Set(p.X, p.Y, fill)
		stack = append(stack,
			core.Point{X: p.X + 1, Y: p.Y},
			core.Point{X: p.X - 1, Y: p.Y},
			core.Point{X: p.X, Y: p.Y + 1},
			core.Point{X: p.X, Y: p.Y - 1},
		)
	}
}

// Region is a magic-wand selection: a per-pixel mask over the source surface
// plus the bounding rectangle of the selected pixels.
type Region struct {
	W, H   int
	Mask   []bool
	Bounds image.Rectangle
	Count  int
}

// Contains reports whether the pixel at (x, y) is part of the selection.
func (r *Region) Contains(x, y int) bool {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return false
	}
	return r.Mask[y*r.W+x]
}

// Empty reports whether nothing was selected.
func (r *Region) Empty() bool { return r.Count == 0 }

// MagicWand grows a selection from the seed over pixels whose Euclidean RGB
// distance from the seed color is within the tolerance. Growth is 4-connected
// like FloodFill; tolerance 0 degenerates to the exact-match region. The
// source surface is never mutated.
func MagicWand(src *raster.Surface, seed core.Point, tolerance float64) Region {
	w, h := src.Width(), src.Height()
	region := Region{W: w, H: h, Mask: make([]bool, w*h)}
	if !src.In(seed.X, seed.Y) {
		return region
	}
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}
	target := src.At(seed.X, seed.Y)

	visited := make([]bool, w*h)
	stack := []core.Point{seed}
	minX, minY := seed.X, seed.Y
	maxX, maxY := seed.X, seed.Y
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !src.In(p.X, p.Y) {
			continue
		}
		idx := p.Y*w + p.X
		if visited[idx] {
			continue
		}
		visited[idx] = true
		if colorDistance(src.At(p.X, p.Y), target) > tolerance {
			continue
		}
		region.Mask[idx] = true
		region.Count++
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
		stack = append(stack,
			core.Point{X: p.X + 1, Y: p.Y},
			core.Point{X: p.X - 1, Y: p.Y},
			core.Point{X: p.X, Y: p.Y + 1},
			core.Point{X: p.X, Y: p.Y - 1},
		)
	}
	if region.Count > 0 {
		region.Bounds = image.Rect(minX, minY, maxX+1, maxY+1)
	}
	return region
}

// GradientFill composites a linear gradient over the entire surface, running
// from the tool color at the start point to fully transparent at the end
// point. Pixels beyond either endpoint clamp to the nearest stop.
func GradientFill(dst *raster.Surface, from, to core.Point, p Params) {
	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	lenSq := dx*dx + dy*dy

	for y := 0; y < dst.Height(); y++ {
		for x := 0; x < dst.Width(); x++ {
			t := 0.0
			if lenSq > 0 {
				t = (float64(x-from.X)*dx + float64(y-from.Y)*dy) / lenSq
			}
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			alpha := (1 - t) * p.Opacity
			if alpha <= 0 {
				continue
			}
			src := p.Color
			src.A = uint8(float64(src.A) * alpha)
			dst.Set(x, y, raster.CompositeOver(src, dst.At(x, y)))
		}
	}
}

func sameRGB(a, b color.RGBA) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}

func colorDistance(a, b color.RGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
