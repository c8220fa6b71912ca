package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"canvascrafters/core"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	stmt := `
	CREATE TABLE IF NOT EXISTS canvases (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		background TEXT,
		visibility TEXT NOT NULL DEFAULT 'private',
		collaborators TEXT NOT NULL DEFAULT '[]',
		snapshot BLOB,
		thumbnail TEXT,
		views INTEGER NOT NULL DEFAULT 0,
		likes INTEGER NOT NULL DEFAULT 0,
		deleted INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_canvases_owner ON canvases(owner_id, deleted);
	CREATE INDEX IF NOT EXISTS idx_canvases_public ON canvases(visibility, deleted, updated_at);`
	if _, err = db.Exec(stmt); err != nil {
		log.Fatalf("failed to create canvases table: %v", err)
	}

	return &sqliteStore{db}
}

func (s *sqliteStore) Create(ctx context.Context, canvas *core.Canvas) (string, error) {
	id := ulid.Make().String()
	now := time.Now()
	collaborators, err := json.Marshal(canvas.Collaborators)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO canvases (id, owner_id, title, width, height, background, visibility,
			collaborators, snapshot, thumbnail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, canvas.OwnerID, canvas.Title, canvas.Width, canvas.Height,
		canvas.BackgroundColor, canvas.Visibility, string(collaborators),
		canvas.Snapshot, canvas.Thumbnail, now, now)
	if err != nil {
		logrus.WithError(err).Error("Failed to create canvas")
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"canvas_id": id,
		"owner_id":  canvas.OwnerID,
	}).Info("Canvas created")
	return id, nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*core.Canvas, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, width, height, background, visibility,
			collaborators, snapshot, thumbnail, views, likes, created_at, updated_at
		FROM canvases WHERE id = ? AND deleted = 0`, id)
	canvas, err := scanCanvas(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		logrus.WithError(err).WithField("canvas_id", id).Error("Failed to retrieve canvas")
		return nil, err
	}
	return canvas, nil
}

func (s *sqliteStore) List(ctx context.Context, ownerID string) ([]*core.Canvas, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, width, height, background, visibility,
			collaborators, NULL, thumbnail, views, likes, created_at, updated_at
		FROM canvases WHERE owner_id = ? AND deleted = 0
		ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCanvases(rows)
}

func (s *sqliteStore) ListPublic(ctx context.Context, limit, offset int) ([]*core.Canvas, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, width, height, background, visibility,
			collaborators, NULL, thumbnail, views, likes, created_at, updated_at
		FROM canvases WHERE visibility = 'public' AND deleted = 0
		ORDER BY updated_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCanvases(rows)
}

func (s *sqliteStore) SaveSnapshot(ctx context.Context, id string, snapshot []byte, thumbnail string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE canvases SET snapshot = ?, thumbnail = ?, updated_at = ? WHERE id = ? AND deleted = 0",
		snapshot, thumbnail, time.Now(), id)
	if err != nil {
		logrus.WithError(err).WithField("canvas_id", id).Error("Failed to save snapshot")
		return fmt.Errorf("%w: %v", core.ErrSaveFailed, err)
	}
	return requireRow(res)
}

func (s *sqliteStore) UpdateMeta(ctx context.Context, id, title string, visibility core.Visibility) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE canvases SET title = ?, visibility = ?, updated_at = ? WHERE id = ? AND deleted = 0",
		title, visibility, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *sqliteStore) AddCollaborator(ctx context.Context, id string, c core.Collaborator) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		"SELECT collaborators FROM canvases WHERE id = ? AND deleted = 0", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return err
	}

	var collaborators []core.Collaborator
	if err := json.Unmarshal([]byte(raw), &collaborators); err != nil {
		return err
	}
	replaced := false
	for i := range collaborators {
		if collaborators[i].UserID == c.UserID {
			collaborators[i].Permission = c.Permission
			replaced = true
			break
		}
	}
	if !replaced {
		collaborators = append(collaborators, c)
	}
	updated, err := json.Marshal(collaborators)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE canvases SET collaborators = ?, updated_at = ? WHERE id = ?",
		string(updated), time.Now(), id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteStore) Like(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE canvases SET likes = likes + 1 WHERE id = ? AND deleted = 0", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *sqliteStore) IncrementViews(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE canvases SET views = views + 1 WHERE id = ? AND deleted = 0", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE canvases SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0",
		time.Now(), id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	logrus.WithField("canvas_id", id).Info("Canvas deleted")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCanvas(row rowScanner) (*core.Canvas, error) {
	var canvas core.Canvas
	var collaborators string
	var snapshot []byte
	var thumbnail sql.NullString
	err := row.Scan(&canvas.ID, &canvas.OwnerID, &canvas.Title, &canvas.Width,
		&canvas.Height, &canvas.BackgroundColor, &canvas.Visibility,
		&collaborators, &snapshot, &thumbnail, &canvas.Views, &canvas.Likes,
		&canvas.CreatedAt, &canvas.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(collaborators), &canvas.Collaborators); err != nil {
		return nil, fmt.Errorf("corrupt collaborators column for canvas %s: %w", canvas.ID, err)
	}
	canvas.Snapshot = snapshot
	canvas.Thumbnail = thumbnail.String
	return &canvas, nil
}

func collectCanvases(rows *sql.Rows) ([]*core.Canvas, error) {
	canvases := make([]*core.Canvas, 0)
	for rows.Next() {
		canvas, err := scanCanvas(rows)
		if err != nil {
			return nil, err
		}
		canvases = append(canvases, canvas)
	}
	return canvases, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
