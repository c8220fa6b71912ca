package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"canvascrafters/core"
)

// s3Store keeps one JSON object per canvas at canvases/{id}. Counters go
// through a get-modify-put cycle; concurrent bumps of the same canvas can
// lose increments, which matches the last-write-wins model of the rest of
// the system.
type s3Store struct {
	s3Client *s3.Client
	bucket   string
}

// NewStore creates a new S3-based store.
func NewStore(bucketName string) *s3Store {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}
	return &s3Store{
		s3Client: s3.NewFromConfig(cfg),
		bucket:   bucketName,
	}
}

func canvasKey(id string) string {
	return "canvases/" + id
}

func (s *s3Store) get(ctx context.Context, id string) (*core.Canvas, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(canvasKey(id)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get canvas %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read canvas data: %w", err)
	}
	var canvas core.Canvas
	if err := json.Unmarshal(data, &canvas); err != nil {
		return nil, fmt.Errorf("corrupt canvas object %s: %w", id, err)
	}
	if canvas.Deleted {
		return nil, core.ErrNotFound
	}
	return &canvas, nil
}

func (s *s3Store) put(ctx context.Context, canvas *core.Canvas) error {
	data, err := json.Marshal(canvas)
	if err != nil {
		return err
	}
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(canvasKey(canvas.ID)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload canvas: %w", err)
	}
	return nil
}

func (s *s3Store) update(ctx context.Context, id string, fn func(*core.Canvas)) error {
	canvas, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	fn(canvas)
	canvas.UpdatedAt = time.Now()
	return s.put(ctx, canvas)
}

func (s *s3Store) Create(ctx context.Context, canvas *core.Canvas) (string, error) {
	id := ulid.Make().String()
	now := time.Now()
	stored := *canvas
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if err := s.put(ctx, &stored); err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{
		"canvas_id": id,
		"owner_id":  canvas.OwnerID,
	}).Info("Canvas created")
	return id, nil
}

func (s *s3Store) Get(ctx context.Context, id string) (*core.Canvas, error) {
	return s.get(ctx, id)
}

func (s *s3Store) List(ctx context.Context, ownerID string) ([]*core.Canvas, error) {
	return s.list(ctx, func(c *core.Canvas) bool { return c.OwnerID == ownerID }, 0, 0)
}

func (s *s3Store) ListPublic(ctx context.Context, limit, offset int) ([]*core.Canvas, error) {
	return s.list(ctx, func(c *core.Canvas) bool { return c.Visibility == core.VisibilityPublic }, limit, offset)
}

func (s *s3Store) list(ctx context.Context, keep func(*core.Canvas) bool, limit, offset int) ([]*core.Canvas, error) {
	prefix := "canvases/"
	canvases := make([]*core.Canvas, 0)

	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list canvases: %w", err)
		}
		for _, object := range page.Contents {
			id := (*object.Key)[len(prefix):]
			canvas, err := s.get(ctx, id)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					continue
				}
				logrus.WithError(err).Warnf("skipping unreadable canvas object %s", *object.Key)
				continue
			}
			if !keep(canvas) {
				continue
			}
			canvas.Snapshot = nil
			canvases = append(canvases, canvas)
		}
	}

	sort.Slice(canvases, func(i, j int) bool {
		return canvases[i].UpdatedAt.After(canvases[j].UpdatedAt)
	})
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

func (s *s3Store) SaveSnapshot(ctx context.Context, id string, snapshot []byte, thumbnail string) error {
	err := s.update(ctx, id, func(c *core.Canvas) {
		c.Snapshot = snapshot
		c.Thumbnail = thumbnail
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", core.ErrSaveFailed, err)
	}
	return nil
}

func (s *s3Store) UpdateMeta(ctx context.Context, id, title string, visibility core.Visibility) error {
	return s.update(ctx, id, func(c *core.Canvas) {
		c.Title = title
		c.Visibility = visibility
	})
}

func (s *s3Store) AddCollaborator(ctx context.Context, id string, collab core.Collaborator) error {
	return s.update(ctx, id, func(c *core.Canvas) {
		for i := range c.Collaborators {
			if c.Collaborators[i].UserID == collab.UserID {
				c.Collaborators[i].Permission = collab.Permission
				return
			}
		}
		c.Collaborators = append(c.Collaborators, collab)
	})
}

func (s *s3Store) Like(ctx context.Context, id string) error {
	return s.update(ctx, id, func(c *core.Canvas) { c.Likes++ })
}

func (s *s3Store) IncrementViews(ctx context.Context, id string) error {
	return s.update(ctx, id, func(c *core.Canvas) { c.Views++ })
}

func (s *s3Store) Delete(ctx context.Context, id string) error {
	return s.update(ctx, id, func(c *core.Canvas) { c.Deleted = true })
}
