package core

import "testing"

func TestOperationRoundTrip(t *testing.T) {
	op := &Operation{
		Kind:     OpDraw,
		StrokeID: "s1",
		UserID:   "alice",
		Params:   ToolParams{Tool: "brush", Color: "#112233", Size: 4, Opacity: 0.8},
		Points:   []Point{{X: 3, Y: 7}},
	}
	data, err := EncodeOperation(op)
	if err != nil {
		t.Fatalf("EncodeOperation: %v", err)
	}
	got, err := DecodeOperation(data)
	if err != nil {
		t.Fatalf("DecodeOperation: %v", err)
	}
	if got.Kind != OpDraw || got.StrokeID != "s1" || got.Params.Tool != "brush" {
		t.Errorf("round trip mangled the operation: %+v", got)
	}
	if len(got.Points) != 1 || got.Points[0] != (Point{X: 3, Y: 7}) {
		t.Errorf("points = %v", got.Points)
	}
}

func TestDecodeOperationRejectsUnknownKind(t *testing.T) {
	if _, err := DecodeOperation([]byte(`{"kind":"teleport","userId":"x","params":{}}`)); err == nil {
		t.Fatal("unknown kind must be rejected")
	}
}

func TestDecodeOperationRejectsGarbage(t *testing.T) {
	if _, err := DecodeOperation([]byte("{")); err == nil {
		t.Fatal("malformed JSON must be rejected")
	}
}
