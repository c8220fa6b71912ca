package session

import (
	"canvascrafters/core"
	"canvascrafters/raster"
	"canvascrafters/tools"
)

// Applier replays operations received from other collaborators onto the
// local surface. Remote strokes arrive interleaved across senders, so open
// strokes are tracked per stroke ID; a draw without a preceding start is
// dropped, and an end closes exactly the stroke it names.
type Applier struct {
	surface *raster.Surface
	open    map[string]core.Point // strokeID -> last applied point
}

// NewApplier creates an applier over the local surface.
func NewApplier(surface *raster.Surface) *Applier {
	return &Applier{
		surface: surface,
		open:    make(map[string]core.Point),
	}
}

// Apply mutates the surface according to one remote operation. Unknown or
// out-of-order operations are ignored; a relay payload must never crash the
// local editor.
func (a *Applier) Apply(op *core.Operation) {
	if op == nil || len(op.Points) == 0 {
		return
	}
	p := tools.FromWire(op.Params)

	switch op.Kind {
	case core.OpStart:
		at := op.Points[0]
		a.open[op.StrokeID] = at
		if p.Kind.Freehand() {
			tools.StampStroke(a.surface, at, at, p)
		}
	case core.OpDraw:
		last, ok := a.open[op.StrokeID]
		if !ok {
			return
		}
		at := op.Points[0]
		if p.Kind.Freehand() {
			tools.StampStroke(a.surface, last, at, p)
		}
		a.open[op.StrokeID] = at
	case core.OpEnd:
		last, ok := a.open[op.StrokeID]
		if !ok {
			return
		}
		if p.Kind.Freehand() {
			tools.StampStroke(a.surface, last, op.Points[len(op.Points)-1], p)
		}
		delete(a.open, op.StrokeID)
	case core.OpShape:
		if len(op.Points) < 2 {
			return
		}
		tools.CommitShape(a.surface, op.Points[0], op.Points[1], p)
		delete(a.open, op.StrokeID)
	case core.OpGradient:
		if len(op.Points) < 2 {
			return
		}
		tools.GradientFill(a.surface, op.Points[0], op.Points[1], p)
		delete(a.open, op.StrokeID)
	case core.OpFill:
		tools.FloodFill(a.surface, op.Points[0], p.Color)
	case core.OpCursor:
		// Presence only.
	}
}

// OpenStrokes reports how many remote strokes are currently in progress.
func (a *Applier) OpenStrokes() int { return len(a.open) }
