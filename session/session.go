// Package session tracks one user's pointer-down-to-pointer-up interactions
// on a raster surface, applies them locally through the tool engine, emits
// the equivalent wire operations for the relay, and keeps a bounded undo
// history of full-surface snapshots.
package session

import (
	"image/color"

	"github.com/oklog/ulid/v2"

	"canvascrafters/core"
	"canvascrafters/raster"
	"canvascrafters/tools"
)

// State of the pointer interaction machine.
type State int

const (
	Idle State = iota
	Active
)

// EmitFunc receives each operation the session produces, in order. The relay
// transport plugs in here; tests plug in a recorder.
type EmitFunc func(op *core.Operation)

// Session owns the surface for the duration of an editing session. It is not
// safe for concurrent use; the client event loop is single-threaded.
type Session struct {
	userID  string
	surface *raster.Surface
	history *History
	emit    EmitFunc

	state    State
	strokeID string
	wire     core.ToolParams
	params   tools.Params
	down     core.Point
	last     core.Point

	picked    color.RGBA
	hasPicked bool
	selection tools.Region
}

// New creates a session over the surface. The initial surface state becomes
// the undo baseline. emit may be nil for offline editing.
func New(userID string, surface *raster.Surface, historyCapacity int, emit EmitFunc) *Session {
	s := &Session{
		userID:  userID,
		surface: surface,
		history: NewHistory(historyCapacity),
		emit:    emit,
	}
	s.history.Push(surface.Snapshot())
	return s
}

// Surface returns the surface the session draws on.
func (s *Session) Surface() *raster.Surface { return s.surface }

// State returns the current interaction state.
func (s *Session) State() State { return s.state }

// Picked returns the color read by the last eyedropper use.
func (s *Session) Picked() (color.RGBA, bool) { return s.picked, s.hasPicked }

// Selection returns the last magic-wand selection.
func (s *Session) Selection() tools.Region { return s.selection }

// Begin handles pointer-down with the given tool settings. One-shot tools
// (fill, eyedropper, magic wand) complete here and leave the session Idle;
// everything else opens a stroke.
func (s *Session) Begin(p core.Point, wire core.ToolParams) {
	if s.state == Active {
		// A second pointer-down without an end means we lost an event
		// somewhere; close the open stroke first.
		s.End(s.last)
	}
	s.wire = wire
	s.params = tools.FromWire(wire)

	switch s.params.Kind {
	case tools.KindEyedropper:
		if c, ok := tools.Eyedropper(s.surface, p); ok {
			s.picked = c
			s.hasPicked = true
		}
		return
	case tools.KindWand:
		// MagicWand treats a negative tolerance as unset, so an explicit
		// zero still means exact match.
		s.selection = tools.MagicWand(s.surface, p, s.params.Tolerance)
		return
	case tools.KindFill:
		tools.FloodFill(s.surface, p, s.params.Color)
		s.send(&core.Operation{
			Kind:   core.OpFill,
			UserID: s.userID,
			Params: wire,
			Points: []core.Point{p},
		})
		s.history.Push(s.surface.Snapshot())
		return
	}

	s.state = Active
	s.strokeID = ulid.Make().String()
	s.down = p
	s.last = p

	if s.freehand() {
		tools.StampStroke(s.surface, p, p, s.params)
	}
	s.send(&core.Operation{
		Kind:     core.OpStart,
		StrokeID: s.strokeID,
		UserID:   s.userID,
		Params:   wire,
		Points:   []core.Point{p},
	})
}

// Move handles one pointer-move sample. Freehand tools mutate the surface
// immediately; shape and gradient tools only extend the pending geometry, the
// committed raster stays untouched until End.
func (s *Session) Move(p core.Point) {
	if s.state != Active {
		return
	}
	if s.freehand() {
		tools.StampStroke(s.surface, s.last, p, s.params)
	}
	s.send(&core.Operation{
		Kind:     core.OpDraw,
		StrokeID: s.strokeID,
		UserID:   s.userID,
		Params:   s.wire,
		Points:   []core.Point{p},
	})
	s.last = p
}

// End handles pointer-up (and pointer-leave): commits shape and gradient
// tools, closes the stroke and pushes an undo snapshot.
func (s *Session) End(p core.Point) {
	if s.state != Active {
		return
	}
	kind := core.OpEnd
	switch {
	case s.freehand():
		tools.StampStroke(s.surface, s.last, p, s.params)
	case s.params.Kind == tools.KindGradient:
		tools.GradientFill(s.surface, s.down, p, s.params)
		kind = core.OpGradient
	default:
		tools.CommitShape(s.surface, s.down, p, s.params)
		kind = core.OpShape
	}
	s.send(&core.Operation{
		Kind:     kind,
		StrokeID: s.strokeID,
		UserID:   s.userID,
		Params:   s.wire,
		Points:   []core.Point{s.down, p},
	})
	s.state = Idle
	s.strokeID = ""
	s.history.Push(s.surface.Snapshot())
}

// Cancel forces the session to Idle when the tab loses focus or the pointer
// leaves the drawing area mid-stroke. The stroke is closed at its last known
// point so no open state lingers.
func (s *Session) Cancel() {
	if s.state != Active {
		return
	}
	s.End(s.last)
}

// Preview renders the pending shape or gradient onto a throwaway copy of the
// surface for the live overlay. Returns nil when nothing is pending.
func (s *Session) Preview(p core.Point) *raster.Surface {
	if s.state != Active || s.freehand() {
		return nil
	}
	overlay := s.surface.Clone()
	if s.params.Kind == tools.KindGradient {
		tools.GradientFill(overlay, s.down, p, s.params)
	} else {
		tools.CommitShape(overlay, s.down, p, s.params)
	}
	return overlay
}

// Undo restores the surface to the state before the most recent stroke.
// A no-op when there is nothing to undo or a stroke is still open.
func (s *Session) Undo() {
	if s.state == Active {
		return
	}
	if snap := s.history.Undo(); snap != nil {
		// Snapshots are taken from this surface, so the length always fits.
		_ = s.surface.Restore(snap)
	}
}

// Redo reverses the most recent Undo.
func (s *Session) Redo() {
	if s.state == Active {
		return
	}
	if snap := s.history.Redo(); snap != nil {
		_ = s.surface.Restore(snap)
	}
}

func (s *Session) freehand() bool {
	return s.params.Kind.Freehand()
}

func (s *Session) send(op *core.Operation) {
	if s.emit != nil {
		s.emit(op)
	}
}
