package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"canvascrafters/core"
)

// memStore keeps canvases in process memory. Used for development and tests;
// everything is lost on restart.
type memStore struct {
	mu       sync.RWMutex
	canvases map[string]*core.Canvas
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{canvases: make(map[string]*core.Canvas)}
}

func (s *memStore) Create(ctx context.Context, canvas *core.Canvas) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	now := time.Now()
	stored := *canvas
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.canvases[id] = &stored

	logrus.WithFields(logrus.Fields{
		"canvas_id": id,
		"owner_id":  canvas.OwnerID,
	}).Info("Canvas created")
	return id, nil
}

func (s *memStore) Get(ctx context.Context, id string) (*core.Canvas, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	canvas, ok := s.canvases[id]
	if !ok || canvas.Deleted {
		return nil, core.ErrNotFound
	}
	copied := *canvas
	return &copied, nil
}

func (s *memStore) List(ctx context.Context, ownerID string) ([]*core.Canvas, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	canvases := make([]*core.Canvas, 0)
	for _, canvas := range s.canvases {
		if canvas.Deleted || canvas.OwnerID != ownerID {
			continue
		}
		canvases = append(canvases, listCopy(canvas))
	}
	sortNewestFirst(canvases)
	return canvases, nil
}

func (s *memStore) ListPublic(ctx context.Context, limit, offset int) ([]*core.Canvas, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	canvases := make([]*core.Canvas, 0)
	for _, canvas := range s.canvases {
		if canvas.Deleted || canvas.Visibility != core.VisibilityPublic {
			continue
		}
		canvases = append(canvases, listCopy(canvas))
	}
	sortNewestFirst(canvases)
	if offset >= len(canvases) {
		return []*core.Canvas{}, nil
	}
	canvases = canvases[offset:]
	if limit > 0 && limit < len(canvases) {
		canvases = canvases[:limit]
	}
	return canvases, nil
}

func (s *memStore) SaveSnapshot(ctx context.Context, id string, snapshot []byte, thumbnail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	canvas, ok := s.canvases[id]
	if !ok || canvas.Deleted {
		return core.ErrNotFound
	}
	canvas.Snapshot = snapshot
	canvas.Thumbnail = thumbnail
	canvas.UpdatedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"canvas_id":   id,
		"data_length": len(snapshot),
	}).Info("Canvas snapshot saved")
	return nil
}

func (s *memStore) UpdateMeta(ctx context.Context, id, title string, visibility core.Visibility) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	canvas, ok := s.canvases[id]
	if !ok || canvas.Deleted {
		return core.ErrNotFound
	}
	canvas.Title = title
	canvas.Visibility = visibility
	canvas.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) AddCollaborator(ctx context.Context, id string, c core.Collaborator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	canvas, ok := s.canvases[id]
	if !ok || canvas.Deleted {
		return core.ErrNotFound
	}
	for i, existing := range canvas.Collaborators {
		if existing.UserID == c.UserID {
			canvas.Collaborators[i].Permission = c.Permission
			return nil
		}
	}
	canvas.Collaborators = append(canvas.Collaborators, c)
	return nil
}

func (s *memStore) Like(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	canvas, ok := s.canvases[id]
	if !ok || canvas.Deleted {
		return core.ErrNotFound
	}
	canvas.Likes++
	return nil
}

func (s *memStore) IncrementViews(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	canvas, ok := s.canvases[id]
	if !ok || canvas.Deleted {
		return core.ErrNotFound
	}
	canvas.Views++
	return nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	canvas, ok := s.canvases[id]
	if !ok || canvas.Deleted {
		return core.ErrNotFound
	}
	canvas.Deleted = true
	logrus.WithField("canvas_id", id).Info("Canvas deleted")
	return nil
}

// listCopy strips the snapshot blob so list responses stay light.
func listCopy(canvas *core.Canvas) *core.Canvas {
	copied := *canvas
	copied.Snapshot = nil
	return &copied
}

func sortNewestFirst(canvases []*core.Canvas) {
	sort.Slice(canvases, func(i, j int) bool {
		if canvases[i].UpdatedAt.Equal(canvases[j].UpdatedAt) {
			return canvases[i].ID > canvases[j].ID
		}
		return canvases[i].UpdatedAt.After(canvases[j].UpdatedAt)
	})
}
