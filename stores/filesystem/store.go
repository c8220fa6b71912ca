package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"canvascrafters/core"
)

// fsStore keeps one JSON document per canvas under the base directory. The
// mutex serializes read-modify-write cycles; concurrent saves of different
// canvases are fine, but counters and collaborator edits need the whole file.
type fsStore struct {
	basePath string
	mu       sync.Mutex
}

// NewStore creates a new filesystem-based store.
func NewStore(basePath string) *fsStore {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		log.Fatalf("failed to create base directory: %v", err)
	}
	return &fsStore{basePath: basePath}
}

func (s *fsStore) canvasPath(id string) (string, error) {
	// IDs are ULIDs we minted ourselves; reject anything path-like anyway.
	if id == "" || filepath.Base(id) != id {
		return "", fmt.Errorf("invalid canvas id %q", id)
	}
	return filepath.Join(s.basePath, id+".json"), nil
}

func (s *fsStore) read(id string) (*core.Canvas, error) {
	path, err := s.canvasPath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	var canvas core.Canvas
	if err := json.Unmarshal(data, &canvas); err != nil {
		return nil, fmt.Errorf("corrupt canvas file %s: %w", path, err)
	}
	if canvas.Deleted {
		return nil, core.ErrNotFound
	}
	return &canvas, nil
}

func (s *fsStore) write(canvas *core.Canvas) error {
	path, err := s.canvasPath(canvas.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(canvas)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// update applies fn to the stored canvas under the lock and writes it back.
func (s *fsStore) update(id string, fn func(*core.Canvas)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	canvas, err := s.read(id)
	if err != nil {
		return err
	}
	fn(canvas)
	canvas.UpdatedAt = time.Now()
	return s.write(canvas)
}

func (s *fsStore) Create(ctx context.Context, canvas *core.Canvas) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	now := time.Now()
	stored := *canvas
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if err := s.write(&stored); err != nil {
		logrus.WithError(err).Error("Failed to write canvas file")
		return "", err
	}
	logrus.WithFields(logrus.Fields{
		"canvas_id": id,
		"owner_id":  canvas.OwnerID,
	}).Info("Canvas created")
	return id, nil
}

func (s *fsStore) Get(ctx context.Context, id string) (*core.Canvas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

func (s *fsStore) List(ctx context.Context, ownerID string) ([]*core.Canvas, error) {
	return s.list(func(c *core.Canvas) bool { return c.OwnerID == ownerID }, 0, 0)
}

func (s *fsStore) ListPublic(ctx context.Context, limit, offset int) ([]*core.Canvas, error) {
	return s.list(func(c *core.Canvas) bool { return c.Visibility == core.VisibilityPublic }, limit, offset)
}

func (s *fsStore) list(keep func(*core.Canvas) bool, limit, offset int) ([]*core.Canvas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	canvases := make([]*core.Canvas, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		canvas, err := s.read(id)
		if err != nil {
			continue
		}
		if !keep(canvas) {
			continue
		}
		canvas.Snapshot = nil
		canvases = append(canvases, canvas)
	}
	sortNewestFirst(canvases)
	if offset > 0 {
		if offset >= len(canvases) {
			return []*core.Canvas{}, nil
		}
		canvases = canvases[offset:]
	}
	if limit > 0 && limit < len(canvases) {
		canvases = canvases[:limit]
	}
	return canvases, nil
}

func (s *fsStore) SaveSnapshot(ctx context.Context, id string, snapshot []byte, thumbnail string) error {
	err := s.update(id, func(c *core.Canvas) {
		c.Snapshot = snapshot
		c.Thumbnail = thumbnail
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"canvas_id":   id,
		"data_length": len(snapshot),
	}).Info("Canvas snapshot saved")
	return nil
}

func (s *fsStore) UpdateMeta(ctx context.Context, id, title string, visibility core.Visibility) error {
	return s.update(id, func(c *core.Canvas) {
		c.Title = title
		c.Visibility = visibility
	})
}

func (s *fsStore) AddCollaborator(ctx context.Context, id string, collab core.Collaborator) error {
	return s.update(id, func(c *core.Canvas) {
		for i := range c.Collaborators {
			if c.Collaborators[i].UserID == collab.UserID {
				c.Collaborators[i].Permission = collab.Permission
				return
			}
		}
		c.Collaborators = append(c.Collaborators, collab)
	})
}

func (s *fsStore) Like(ctx context.Context, id string) error {
	return s.update(id, func(c *core.Canvas) { c.Likes++ })
}

func (s *fsStore) IncrementViews(ctx context.Context, id string) error {
	return s.update(id, func(c *core.Canvas) { c.Views++ })
}

func (s *fsStore) Delete(ctx context.Context, id string) error {
	err := s.update(id, func(c *core.Canvas) { c.Deleted = true })
	if err != nil {
		return err
	}
	logrus.WithField("canvas_id", id).Info("Canvas deleted")
	return nil
}

func sortNewestFirst(canvases []*core.Canvas) {
	sort.Slice(canvases, func(i, j int) bool {
		return canvases[i].UpdatedAt.After(canvases[j].UpdatedAt)
	})
}
