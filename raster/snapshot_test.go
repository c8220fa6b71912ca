package raster

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"canvascrafters/core"
)

func TestPNGRoundTrip(t *testing.T) {
	s := New(16, 12, white)
	s.Set(3, 3, red)
	s.Set(15, 11, blue)

	data, err := EncodePNG(s)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	decoded, err := DecodePNG(data, 16, 12)
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if !s.Equal(decoded) {
		t.Error("decoded surface differs from the original")
	}
}

func TestDecodePNGDimensionMismatch(t *testing.T) {
	s := New(16, 12, white)
	data, err := EncodePNG(s)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if _, err := DecodePNG(data, 8, 8); !errors.Is(err, core.ErrDimensionMismatch) {
		t.Fatalf("DecodePNG wrong dims = %v, want ErrDimensionMismatch", err)
	}
}

func TestDecodePNGGarbage(t *testing.T) {
	if _, err := DecodePNG([]byte("not a png"), 4, 4); err == nil {
		t.Fatal("expected an error for malformed data")
	}
}

func TestThumbnailFitsMaxEdge(t *testing.T) {
	s := New(640, 480, blue)
	data, err := Thumbnail(s, 256)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("thumbnail is not valid PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > 256 || b.Dy() > 256 {
		t.Errorf("thumbnail %dx%d exceeds max edge 256", b.Dx(), b.Dy())
	}
	if b.Dx() != 256 {
		t.Errorf("long edge = %d, want 256", b.Dx())
	}
}

func TestThumbnailSmallCanvasKeepsSize(t *testing.T) {
	s := New(32, 20, white)
	data, err := Thumbnail(s, 256)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("thumbnail is not valid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 20 {
		t.Errorf("thumbnail %dx%d, want original 32x20", b.Dx(), b.Dy())
	}
}
