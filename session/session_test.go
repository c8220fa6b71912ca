package session

import (
	"image/color"
	"testing"

	"canvascrafters/core"
	"canvascrafters/raster"
)

var (
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
	black = color.RGBA{0x00, 0x00, 0x00, 0xff}
	red   = color.RGBA{0xff, 0x00, 0x00, 0xff}
)

func pencilParams() core.ToolParams {
	return core.ToolParams{Tool: "pencil", Color: "#000000", Size: 1, Opacity: 1}
}

type recorder struct {
	ops []*core.Operation
}

func (r *recorder) emit(op *core.Operation) { r.ops = append(r.ops, op) }

func (r *recorder) kinds() []core.OpKind {
	out := make([]core.OpKind, len(r.ops))
	for i, op := range r.ops {
		out[i] = op.Kind
	}
	return out
}

func newTestSession(rec *recorder) *Session {
	var emit EmitFunc
	if rec != nil {
		emit = rec.emit
	}
	return New("user-1", raster.New(20, 20, white), 0, emit)
}

func TestStrokeEmitsOrderedOperations(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)

	s.Begin(core.Point{X: 2, Y: 2}, pencilParams())
	s.Move(core.Point{X: 5, Y: 2})
	s.Move(core.Point{X: 9, Y: 2})
	s.End(core.Point{X: 12, Y: 2})

	want := []core.OpKind{core.OpStart, core.OpDraw, core.OpDraw, core.OpEnd}
	got := rec.kinds()
	if len(got) != len(want) {
		t.Fatalf("emitted %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op %d = %v, want %v", i, got[i], want[i])
		}
	}

	strokeID := rec.ops[0].StrokeID
	if strokeID == "" {
		t.Fatal("start op has no stroke ID")
	}
	for _, op := range rec.ops {
		if op.StrokeID != strokeID {
			t.Error("all ops of one stroke must share its ID")
		}
		if op.UserID != "user-1" {
			t.Error("ops must carry the session user")
		}
	}
	if s.State() != Idle {
		t.Error("session should be idle after End")
	}
}

func TestStrokeDrawsOnSurface(t *testing.T) {
	s := newTestSession(nil)
	s.Begin(core.Point{X: 2, Y: 10}, pencilParams())
	s.Move(core.Point{X: 10, Y: 10})
	s.End(core.Point{X: 17, Y: 10})

	for x := 2; x <= 17; x++ {
		if s.Surface().At(x, 10) != black {
			t.Fatalf("stroke pixel (%d,10) missing", x)
		}
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := newTestSession(nil)

	s.Begin(core.Point{X: 5, Y: 5}, pencilParams())
	s.End(core.Point{X: 5, Y: 5})
	if s.Surface().At(5, 5) != black {
		t.Fatal("stroke did not land")
	}

	s.Undo()
	if s.Surface().At(5, 5) != white {
		t.Error("undo did not restore the pre-stroke surface")
	}

	s.Redo()
	if s.Surface().At(5, 5) != black {
		t.Error("redo did not restore the stroke")
	}
}

func TestUndoIgnoredWhileStrokeOpen(t *testing.T) {
	s := newTestSession(nil)
	s.Begin(core.Point{X: 5, Y: 5}, pencilParams())
	s.Undo()
	if s.Surface().At(5, 5) != black {
		t.Error("undo must be a no-op while a stroke is open")
	}
	if s.State() != Active {
		t.Error("undo must not close the stroke")
	}
	s.End(core.Point{X: 5, Y: 5})
}

func TestNewStrokeClearsRedo(t *testing.T) {
	s := newTestSession(nil)

	s.Begin(core.Point{X: 3, Y: 3}, pencilParams())
	s.End(core.Point{X: 3, Y: 3})
	s.Undo()

	s.Begin(core.Point{X: 8, Y: 8}, pencilParams())
	s.End(core.Point{X: 8, Y: 8})
	s.Redo()

	if s.Surface().At(3, 3) != white {
		t.Error("redo after a new stroke must not resurrect the undone one")
	}
	if s.Surface().At(8, 8) != black {
		t.Error("redo must not disturb the latest stroke")
	}
}

func TestFillIsOneShot(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)

	s.Begin(core.Point{X: 5, Y: 5}, core.ToolParams{Tool: "fill", Color: "#ff0000"})
	if s.State() != Idle {
		t.Error("fill must not open a stroke")
	}
	if s.Surface().At(0, 0) != red || s.Surface().At(19, 19) != red {
		t.Error("flood fill did not cover the blank canvas")
	}
	if len(rec.ops) != 1 || rec.ops[0].Kind != core.OpFill {
		t.Fatalf("emitted %v, want a single fill op", rec.kinds())
	}

	s.Undo()
	if s.Surface().At(5, 5) != white {
		t.Error("fill must be undoable")
	}
}

func TestEyedropperPicksWithoutDrawing(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)
	s.Surface().Set(4, 4, red)

	s.Begin(core.Point{X: 4, Y: 4}, core.ToolParams{Tool: "eyedropper"})
	c, ok := s.Picked()
	if !ok || c != red {
		t.Errorf("Picked = %v, %v; want red", c, ok)
	}
	if s.State() != Idle {
		t.Error("eyedropper must not open a stroke")
	}
	if len(rec.ops) != 0 {
		t.Errorf("eyedropper emitted %v, want nothing", rec.kinds())
	}
}

func TestMagicWandSelectsWithoutDrawing(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)

	s.Begin(core.Point{X: 5, Y: 5}, core.ToolParams{Tool: "wand"})
	sel := s.Selection()
	if sel.Empty() {
		t.Fatal("wand on a uniform canvas should select everything")
	}
	if sel.Count != 20*20 {
		t.Errorf("Count = %d, want whole canvas", sel.Count)
	}
	if len(rec.ops) != 0 {
		t.Errorf("wand emitted %v, want nothing", rec.kinds())
	}
}

func TestMagicWandExplicitZeroToleranceIsExact(t *testing.T) {
	s := newTestSession(nil)
	// Distance from white is about 26, inside the default tolerance of 30
	// but outside an exact match.
	nearWhite := color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	s.Surface().Set(6, 5, nearWhite)

	zero := 0.0
	s.Begin(core.Point{X: 5, Y: 5}, core.ToolParams{Tool: "wand", Tolerance: &zero})
	sel := s.Selection()
	if sel.Contains(6, 5) {
		t.Error("zero tolerance must not select a near-match pixel")
	}
	if !sel.Contains(5, 5) {
		t.Error("seed pixel must always be selected")
	}

	s.Begin(core.Point{X: 5, Y: 5}, core.ToolParams{Tool: "wand"})
	if sel = s.Selection(); !sel.Contains(6, 5) {
		t.Error("unset tolerance should fall back to the default and select the near-match pixel")
	}
}

func TestShapeCommitsOnEndOnly(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)

	s.Begin(core.Point{X: 3, Y: 3}, core.ToolParams{Tool: "rect", Color: "#000000", Size: 1})
	s.Move(core.Point{X: 10, Y: 10})
	if s.Surface().At(3, 3) != white {
		t.Error("shape must not touch the surface before End")
	}
	s.End(core.Point{X: 12, Y: 12})
	if s.Surface().At(3, 3) != black {
		t.Error("rectangle corner missing after End")
	}

	last := rec.ops[len(rec.ops)-1]
	if last.Kind != core.OpShape {
		t.Errorf("final op = %v, want shape", last.Kind)
	}
	if len(last.Points) != 2 || last.Points[0] != (core.Point{X: 3, Y: 3}) || last.Points[1] != (core.Point{X: 12, Y: 12}) {
		t.Errorf("shape points = %v, want anchor and release", last.Points)
	}
}

func TestGradientCommitsOnEnd(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)

	s.Begin(core.Point{X: 0, Y: 10}, core.ToolParams{Tool: "gradient", Color: "#000000", Opacity: 1})
	s.End(core.Point{X: 19, Y: 10})

	last := rec.ops[len(rec.ops)-1]
	if last.Kind != core.OpGradient {
		t.Errorf("final op = %v, want gradient", last.Kind)
	}
	if s.Surface().At(0, 10) != black {
		t.Error("gradient start should carry the full tool color")
	}
}

func TestPreviewDoesNotMutate(t *testing.T) {
	s := newTestSession(nil)
	s.Begin(core.Point{X: 3, Y: 3}, core.ToolParams{Tool: "circle", Color: "#000000", Size: 1})

	overlay := s.Preview(core.Point{X: 10, Y: 3})
	if overlay == nil {
		t.Fatal("expected a preview surface for a pending shape")
	}
	if overlay.Equal(s.Surface()) {
		t.Error("preview should render the pending circle")
	}
	if s.Surface().At(10, 3) != white {
		t.Error("preview mutated the committed surface")
	}
	s.End(core.Point{X: 10, Y: 3})
}

func TestCancelClosesStroke(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)

	s.Begin(core.Point{X: 2, Y: 2}, pencilParams())
	s.Move(core.Point{X: 6, Y: 6})
	s.Cancel()

	if s.State() != Idle {
		t.Error("cancel must force the session idle")
	}
	if rec.ops[len(rec.ops)-1].Kind != core.OpEnd {
		t.Error("cancel must emit the closing op")
	}

	// A canceled stroke still counts as one undo step.
	s.Undo()
	if s.Surface().At(2, 2) != white {
		t.Error("undo after cancel did not restore the surface")
	}
}

func TestDoubleBeginClosesOpenStroke(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)

	s.Begin(core.Point{X: 2, Y: 2}, pencilParams())
	s.Begin(core.Point{X: 9, Y: 9}, pencilParams())

	kinds := rec.kinds()
	if len(kinds) != 3 || kinds[0] != core.OpStart || kinds[1] != core.OpEnd || kinds[2] != core.OpStart {
		t.Fatalf("ops = %v, want start, end, start", kinds)
	}
	if rec.ops[0].StrokeID == rec.ops[2].StrokeID {
		t.Error("the second stroke must get a fresh ID")
	}
	s.End(core.Point{X: 9, Y: 9})
}
