// Package tools implements the drawing algorithms of the editor: brush
// compositing, analytic shapes, flood fill, magic-wand selection and gradient
// fill. Every function takes the surface it mutates explicitly; the package
// keeps no state of its own.
package tools

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"canvascrafters/core"

	"golang.org/x/image/colornames"
)

// Kind enumerates the tools of the editor. Dispatch over Kind is exhaustive;
// adding a tool without handling it in the stamp table is a compile-time
// visible omission, not a silent fallthrough.
type Kind int

const (
	KindPencil Kind = iota
	KindBrush
	KindMarker
	KindChalk
	KindWatercolor
	KindAirbrush
	KindOil
	KindTexture
	KindEraser
	KindLine
	KindRect
	KindCircle
	KindPolygon
	KindStar
	KindArrow
	KindFill
	KindGradient
	KindEyedropper
	KindWand
)

var kindNames = map[Kind]string{
	KindPencil:     "pencil",
	KindBrush:      "brush",
	KindMarker:     "marker",
	KindChalk:      "chalk",
	KindWatercolor: "watercolor",
	KindAirbrush:   "airbrush",
	KindOil:        "oil",
	KindTexture:    "texture",
	KindEraser:     "eraser",
	KindLine:       "line",
	KindRect:       "rect",
	KindCircle:     "circle",
	KindPolygon:    "polygon",
	KindStar:       "star",
	KindArrow:      "arrow",
	KindFill:       "fill",
	KindGradient:   "gradient",
	KindEyedropper: "eyedropper",
	KindWand:       "wand",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindFromName maps a wire tool name back to its Kind.
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Freehand reports whether the kind mutates the surface per pointer-move
// sample, as opposed to committing once on pointer-up.
func (k Kind) Freehand() bool {
	switch k {
	case KindPencil, KindBrush, KindMarker, KindChalk, KindWatercolor,
		KindAirbrush, KindOil, KindTexture, KindEraser:
		return true
	}
	return false
}

// BlendMode selects how brush pigment combines with the pixels underneath.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
)

// Params carries the tool settings one operation was made with.
type Params struct {
	Kind      Kind
	Color     color.RGBA
	Size      int
	Opacity   float64 // 0..1
	Flow      float64 // 0..1, airbrush density
	Hardness  float64 // 0..1, edge falloff
	Blend     BlendMode
	Tolerance float64 // magic wand color distance, negative when unset
}

// DefaultTolerance is the magic-wand color distance used when none is set.
const DefaultTolerance = 30.0

// FromWire converts a wire-format parameter snapshot into engine params.
// Unknown tool names come back as the brush so a stray payload never panics
// mid-stroke.
func FromWire(p core.ToolParams) Params {
	kind, ok := KindFromName(p.Tool)
	if !ok {
		kind = KindBrush
	}
	col, err := ParseColor(p.Color)
	if err != nil {
		col = color.RGBA{A: 0xff}
	}
	blend := BlendNormal
	switch p.BlendMode {
	case "multiply":
		blend = BlendMultiply
	case "screen":
		blend = BlendScreen
	}
	tolerance := -1.0
	if p.Tolerance != nil {
		tolerance = *p.Tolerance
	}
	out := Params{
		Kind:      kind,
		Color:     col,
		Size:      p.Size,
		Opacity:   p.Opacity,
		Flow:      p.Flow,
		Hardness:  p.Hardness,
		Blend:     blend,
		Tolerance: tolerance,
	}
	if out.Size < 1 {
		out.Size = 1
	}
	if out.Opacity <= 0 || out.Opacity > 1 {
		out.Opacity = 1
	}
	return out
}

// ParseColor accepts #rrggbb, #rrggbbaa, or an SVG 1.1 color name.
func ParseColor(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return c, nil
	}
	if strings.HasPrefix(spec, "#") && (len(spec) == 7 || len(spec) == 9) {
		r, err1 := strconv.ParseUint(spec[1:3], 16, 8)
		g, err2 := strconv.ParseUint(spec[3:5], 16, 8)
		b, err3 := strconv.ParseUint(spec[5:7], 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		a := uint64(255)
		if len(spec) == 9 {
			v, err := strconv.ParseUint(spec[7:9], 16, 8)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("invalid color %q", s)
			}
			a = v
		}
		return color.RGBA{uint8(r), uint8(g), uint8(b), uint8(a)}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}

// FormatColor renders a color as the #rrggbb hex form used on the wire.
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ToSurfacePoint converts display coordinates to integer pixel indices,
// dividing out the canvas-to-screen scale factor.
func ToSurfacePoint(displayX, displayY, scale float64) core.Point {
	if scale <= 0 {
		scale = 1
	}
	return core.Point{
		X: int(math.Floor(displayX / scale)),
		Y: int(math.Floor(displayY / scale)),
	}
}
