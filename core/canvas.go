package core

import (
	"context"
	"time"
)

// PermissionLevel is what a collaborator entry grants on a canvas.
type PermissionLevel string

const (
	PermissionView PermissionLevel = "view"
	PermissionEdit PermissionLevel = "edit"
)

// Visibility controls who can open a canvas without being a collaborator.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type (
	// Collaborator grants a user a permission level on somebody else's canvas.
	Collaborator struct {
		UserID     string          `json:"userId"`
		Permission PermissionLevel `json:"permission"`
	}

	// Canvas is the durable record of a drawing: metadata plus the latest
	// serialized snapshot of its raster surface. Width and Height are fixed at
	// creation time; a snapshot of different dimensions is rejected on restore.
	Canvas struct {
		ID              string         `json:"id"`
		OwnerID         string         `json:"ownerId"`
		Title           string         `json:"title"`
		Width           int            `json:"width"`
		Height          int            `json:"height"`
		BackgroundColor string         `json:"backgroundColor"`
		Visibility      Visibility     `json:"visibility"`
		Collaborators   []Collaborator `json:"collaborators,omitempty"`
		Snapshot        []byte         `json:"snapshot,omitempty"` // PNG bytes, omitted from list views
		Thumbnail       string         `json:"thumbnail,omitempty"`
		Views           int64          `json:"views"`
		Likes           int64          `json:"likes"`
		Deleted         bool           `json:"deleted,omitempty"`
		CreatedAt       time.Time      `json:"createdAt"`
		UpdatedAt       time.Time      `json:"updatedAt"`
	}

	// CanvasStore defines the persistence layer for canvases. Deleted canvases
	// are flagged, never physically removed, and stay invisible to every read
	// operation.
	CanvasStore interface {
		// Create stores a new canvas and returns its assigned ID.
		Create(ctx context.Context, canvas *Canvas) (string, error)

		// Get returns a canvas by ID, including its snapshot.
		// Returns ErrNotFound for unknown or deleted IDs.
		Get(ctx context.Context, id string) (*Canvas, error)

		// List returns metadata for all canvases owned by a user, without the
		// Snapshot field, newest first.
		List(ctx context.Context, ownerID string) ([]*Canvas, error)

		// ListPublic returns metadata for public canvases for the explore
		// gallery, most recently updated first.
		ListPublic(ctx context.Context, limit, offset int) ([]*Canvas, error)

		// SaveSnapshot overwrites the stored snapshot and thumbnail and bumps
		// the updated timestamp.
		SaveSnapshot(ctx context.Context, id string, snapshot []byte, thumbnail string) error

		// UpdateMeta updates title and visibility.
		UpdateMeta(ctx context.Context, id, title string, visibility Visibility) error

		// AddCollaborator adds or replaces a collaborator entry.
		AddCollaborator(ctx context.Context, id string, c Collaborator) error

		// Like increments the like counter.
		Like(ctx context.Context, id string) error

		// IncrementViews bumps the view counter.
		IncrementViews(ctx context.Context, id string) error

		// Delete soft-deletes a canvas.
		Delete(ctx context.Context, id string) error
	}
)

// CanView reports whether a user may open the canvas. Public canvases are
// viewable by anyone, including anonymous users.
func (c *Canvas) CanView(userID string) bool {
	if c.Visibility == VisibilityPublic {
		return true
	}
	return c.CanEdit(userID) || c.permissionOf(userID) == PermissionView
}

// CanEdit reports whether a user may draw on and save the canvas.
func (c *Canvas) CanEdit(userID string) bool {
	if userID == "" {
		return false
	}
	if c.OwnerID == userID {
		return true
	}
	return c.permissionOf(userID) == PermissionEdit
}

func (c *Canvas) permissionOf(userID string) PermissionLevel {
	if userID == "" {
		return ""
	}
	for _, col := range c.Collaborators {
		if col.UserID == userID {
			return col.Permission
		}
	}
	return ""
}
