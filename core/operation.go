package core

import (
	"encoding/json"
	"fmt"
)

// OpKind tags the variants of an Operation.
type OpKind string

const (
	OpStart    OpKind = "start"    // pointer down, opens a stroke
	OpDraw     OpKind = "draw"     // pointer move inside an open stroke
	OpEnd      OpKind = "end"      // pointer up, closes the stroke
	OpShape    OpKind = "shape"    // analytic shape committed from two points
	OpFill     OpKind = "fill"     // flood fill at a seed point
	OpGradient OpKind = "gradient" // whole-surface linear gradient
	OpCursor   OpKind = "cursor"   // presence only, no surface mutation
)

type (
	// Point is an integer pixel coordinate on a surface.
	Point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	// ToolParams is the snapshot of tool settings an operation was made with.
	// Color is a #rrggbb hex string; Opacity, Flow and Hardness are 0..1.
	ToolParams struct {
		Tool      string  `json:"tool"`
		Color     string  `json:"color"`
		Size      int     `json:"size"`
		Opacity   float64 `json:"opacity"`
		Flow      float64 `json:"flow,omitempty"`
		Hardness  float64 `json:"hardness,omitempty"`
		BlendMode string  `json:"blendMode,omitempty"`
		Tolerance *float64 `json:"tolerance,omitempty"` // nil means tool default
	}

	// Operation is the wire unit relayed between collaborators and the record
	// a stroke session emits. The relay forwards it verbatim; only clients
	// interpret the geometry.
	Operation struct {
		Kind     OpKind     `json:"kind"`
		StrokeID string     `json:"strokeId,omitempty"`
		UserID   string     `json:"userId"`
		Params   ToolParams `json:"params"`
		Points   []Point    `json:"points,omitempty"`
	}
)

// EncodeOperation serializes an operation for the relay.
func EncodeOperation(op *Operation) ([]byte, error) {
	return json.Marshal(op)
}

// DecodeOperation parses an operation received from the relay. The kind is
// validated so malformed payloads fail here instead of deep in the tool
// engine.
func DecodeOperation(data []byte) (*Operation, error) {
	var op Operation
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, fmt.Errorf("decode operation: %w", err)
	}
	switch op.Kind {
	case OpStart, OpDraw, OpEnd, OpShape, OpFill, OpGradient, OpCursor:
	default:
		return nil, fmt.Errorf("decode operation: unknown kind %q", op.Kind)
	}
	return &op, nil
}
