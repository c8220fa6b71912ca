package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"canvascrafters/core"

	xdraw "golang.org/x/image/draw"
)

// EncodePNG serializes the surface as a PNG blob suitable for durable
// storage.
func EncodePNG(s *Surface) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.RGBA()); err != nil {
		return nil, fmt.Errorf("encode surface: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG reconstructs a surface from a stored PNG blob. The decoded image
// must match the expected dimensions; a canvas document's dimensions are
// immutable, so a mismatch means the snapshot is stale or corrupt and the
// load fails with core.ErrDimensionMismatch.
func DecodePNG(data []byte, wantW, wantH int) (*Surface, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode surface: %w", err)
	}
	b := img.Bounds()
	if b.Dx() != wantW || b.Dy() != wantH {
		return nil, core.ErrDimensionMismatch
	}
	s := &Surface{
		img: image.NewRGBA(image.Rect(0, 0, wantW, wantH)),
		w:   wantW,
		h:   wantH,
	}
	xdraw.Draw(s.img, s.img.Bounds(), img, b.Min, xdraw.Src)
	return s, nil
}

// Thumbnail downscales the surface so its longer edge is at most maxEdge
// pixels and returns the result as PNG bytes. The aspect ratio is preserved.
func Thumbnail(s *Surface, maxEdge int) ([]byte, error) {
	if maxEdge < 1 {
		maxEdge = 1
	}
	w, h := s.Width(), s.Height()
	switch {
	case w <= maxEdge && h <= maxEdge:
		// Already small enough; never upscale.
	case w > h:
		h = h * maxEdge / w
		w = maxEdge
	default:
		w = w * maxEdge / h
		h = maxEdge
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), s.RGBA(), s.RGBA().Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
