package memory

import (
	"context"
	"errors"
	"testing"

	"canvascrafters/core"
)

func newCanvas(owner string, vis core.Visibility) *core.Canvas {
	return &core.Canvas{
		OwnerID:         owner,
		Title:           "test",
		Width:           64,
		Height:          64,
		BackgroundColor: "#ffffff",
		Visibility:      vis,
		Snapshot:        []byte{1, 2, 3},
	}
}

func TestCreateAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, err := s.Create(ctx, newCanvas("alice", core.VisibilityPrivate))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("Create returned empty ID")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OwnerID != "alice" || got.Width != 64 || len(got.Snapshot) != 3 {
		t.Errorf("Get returned wrong canvas: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps should be set on create")
	}
}

func TestGetUnknown(t *testing.T) {
	s := NewStore()
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Get unknown = %v, want ErrNotFound", err)
	}
}

func TestListFiltersByOwnerAndStripsSnapshot(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.Create(ctx, newCanvas("alice", core.VisibilityPrivate)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, newCanvas("alice", core.VisibilityPublic)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, newCanvas("bob", core.VisibilityPrivate)); err != nil {
		t.Fatal(err)
	}

	canvases, err := s.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(canvases) != 2 {
		t.Fatalf("List returned %d canvases, want 2", len(canvases))
	}
	for _, c := range canvases {
		if c.OwnerID != "alice" {
			t.Errorf("List leaked a canvas owned by %q", c.OwnerID)
		}
		if c.Snapshot != nil {
			t.Error("List must strip snapshot blobs")
		}
	}
}

func TestListPublicPagination(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.Create(ctx, newCanvas("alice", core.VisibilityPublic)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Create(ctx, newCanvas("alice", core.VisibilityPrivate)); err != nil {
		t.Fatal(err)
	}

	page, err := s.ListPublic(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	for _, c := range page {
		if c.Visibility != core.VisibilityPublic {
			t.Error("private canvas leaked into the public gallery")
		}
	}

	rest, err := s.ListPublic(ctx, 10, 2)
	if err != nil {
		t.Fatalf("ListPublic offset: %v", err)
	}
	if len(rest) != 3 {
		t.Fatalf("offset page size = %d, want 3", len(rest))
	}

	empty, err := s.ListPublic(ctx, 10, 100)
	if err != nil {
		t.Fatalf("ListPublic past end: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("offset past end returned %d canvases", len(empty))
	}
}

func TestSaveSnapshot(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, err := s.Create(ctx, newCanvas("alice", core.VisibilityPrivate))
	if err != nil {
		t.Fatal(err)
	}
	before, _ := s.Get(ctx, id)

	if err := s.SaveSnapshot(ctx, id, []byte{9, 9, 9, 9}, "thumb"); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Snapshot) != 4 || got.Thumbnail != "thumb" {
		t.Errorf("snapshot not stored: %+v", got)
	}
	if got.UpdatedAt.Before(before.UpdatedAt) {
		t.Error("SaveSnapshot must bump UpdatedAt")
	}

	if err := s.SaveSnapshot(ctx, "missing", nil, ""); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("SaveSnapshot unknown = %v, want ErrNotFound", err)
	}
}

func TestUpdateMeta(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, err := s.Create(ctx, newCanvas("alice", core.VisibilityPrivate))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateMeta(ctx, id, "renamed", core.VisibilityPublic); err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}
	got, _ := s.Get(ctx, id)
	if got.Title != "renamed" || got.Visibility != core.VisibilityPublic {
		t.Errorf("UpdateMeta not applied: %+v", got)
	}
}

func TestAddCollaboratorUpsert(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, err := s.Create(ctx, newCanvas("alice", core.VisibilityPrivate))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddCollaborator(ctx, id, core.Collaborator{UserID: "bob", Permission: core.PermissionView}); err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}
	// Re-adding the same user upgrades in place, no duplicate entry.
	if err := s.AddCollaborator(ctx, id, core.Collaborator{UserID: "bob", Permission: core.PermissionEdit}); err != nil {
		t.Fatalf("AddCollaborator upsert: %v", err)
	}

	got, _ := s.Get(ctx, id)
	if len(got.Collaborators) != 1 {
		t.Fatalf("collaborators = %d, want 1", len(got.Collaborators))
	}
	if !got.CanEdit("bob") {
		t.Error("bob should have edit permission after the upgrade")
	}
	if got.CanEdit("mallory") || got.CanView("mallory") {
		t.Error("stranger must have no access to a private canvas")
	}
}

func TestCountersAndSoftDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, err := s.Create(ctx, newCanvas("alice", core.VisibilityPublic))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Like(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := s.IncrementViews(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := s.IncrementViews(ctx, id); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, id)
	if got.Likes != 1 || got.Views != 2 {
		t.Errorf("likes=%d views=%d, want 1 and 2", got.Likes, got.Views)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Error("deleted canvas must be invisible to Get")
	}
	if canvases, _ := s.List(ctx, "alice"); len(canvases) != 0 {
		t.Error("deleted canvas must be invisible to List")
	}
	if canvases, _ := s.ListPublic(ctx, 10, 0); len(canvases) != 0 {
		t.Error("deleted canvas must be invisible to ListPublic")
	}
	if err := s.Delete(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Error("double delete should report not found")
	}
}
