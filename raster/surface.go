// Package raster implements the in-memory pixel buffer a drawing session
// operates on. A Surface always matches the dimensions of the canvas document
// that owns it; snapshot and restore move the raw pixel bytes in and out.
package raster

import (
	"bytes"
	"image"
	"image/color"

	"canvascrafters/core"
)

// Surface is an addressable RGBA pixel grid. Out-of-bounds coordinates are
// rejected, not clamped: Set outside the bounds is a no-op and At returns the
// zero (fully transparent) color. This policy holds for every operation in
// the package.
type Surface struct {
	img *image.RGBA
	w   int
	h   int
}

// New creates a surface of the given dimensions filled with the background
// color.
func New(w, h int, background color.RGBA) *Surface {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	s := &Surface{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		w:   w,
		h:   h,
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s.img.SetRGBA(x, y, background)
		}
	}
	return s
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.w }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.h }

// In reports whether (x, y) addresses a pixel on the surface.
func (s *Surface) In(x, y int) bool {
	return image.Pt(x, y).In(s.img.Bounds())
}

// At returns the pixel color at (x, y), or the zero color out of bounds.
func (s *Surface) At(x, y int) color.RGBA {
	if !s.In(x, y) {
		return color.RGBA{}
	}
	return s.img.RGBAAt(x, y)
}

// Set writes the pixel at (x, y). Out of bounds is a no-op.
func (s *Surface) Set(x, y int, c color.RGBA) {
	if !s.In(x, y) {
		return
	}
	s.img.SetRGBA(x, y, c)
}

// Blit composites src over the surface with its top-left corner at (dx, dy),
// clipped to the surface bounds.
func (s *Surface) Blit(src *Surface, dx, dy int) {
	if src == nil {
		return
	}
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			tx, ty := dx+x, dy+y
			if !s.In(tx, ty) {
				continue
			}
			s.Set(tx, ty, CompositeOver(src.At(x, y), s.At(tx, ty)))
		}
	}
}

// Snapshot returns a copy of the raw RGBA pixel bytes, w*h*4 long.
func (s *Surface) Snapshot() []byte {
	buf := make([]byte, len(s.img.Pix))
	copy(buf, s.img.Pix)
	return buf
}

// Restore replaces the pixel data with a previously taken snapshot. Returns
// core.ErrDimensionMismatch when the byte length does not match the surface.
func (s *Surface) Restore(data []byte) error {
	if len(data) != s.w*s.h*4 {
		return core.ErrDimensionMismatch
	}
	copy(s.img.Pix, data)
	return nil
}

// Clone returns an independent copy of the surface. Shape previews render
// onto a clone so the committed raster stays untouched until pointer-up.
func (s *Surface) Clone() *Surface {
	c := &Surface{
		img: image.NewRGBA(s.img.Bounds()),
		w:   s.w,
		h:   s.h,
	}
	copy(c.img.Pix, s.img.Pix)
	return c
}

// Equal reports whether two surfaces hold identical pixel data.
func (s *Surface) Equal(o *Surface) bool {
	if o == nil || s.w != o.w || s.h != o.h {
		return false
	}
	return bytes.Equal(s.img.Pix, o.img.Pix)
}

// RGBA exposes the backing image for encoding and scaling.
func (s *Surface) RGBA() *image.RGBA { return s.img }

// CompositeOver source-over blends src onto dst using non-premultiplied
// 8-bit alpha.
func CompositeOver(src, dst color.RGBA) color.RGBA {
	if src.A == 0xff {
		return src
	}
	if src.A == 0 {
		return dst
	}
	sa := uint32(src.A)
	da := uint32(dst.A)
	outA := sa + da*(255-sa)/255
	if outA == 0 {
		return color.RGBA{}
	}
	blend := func(sc, dc uint8) uint8 {
		v := (uint32(sc)*sa + uint32(dc)*da*(255-sa)/255) / outA
		return uint8(v)
	}
	return color.RGBA{
		R: blend(src.R, dst.R),
		G: blend(src.G, dst.G),
		B: blend(src.B, dst.B),
		A: uint8(outA),
	}
}
