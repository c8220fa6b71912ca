package core

import "errors"

var (
	// ErrNotFound is returned by stores for unknown or soft-deleted canvases.
	ErrNotFound = errors.New("canvas not found")

	// ErrPermissionDenied is returned when a user lacks the required
	// permission level on a canvas.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDimensionMismatch is returned when snapshot bytes do not match the
	// dimensions of the surface they are restored into.
	ErrDimensionMismatch = errors.New("snapshot dimensions do not match surface")

	// ErrSaveFailed wraps persistence write errors so callers can report them
	// without losing local state.
	ErrSaveFailed = errors.New("canvas save failed")
)
