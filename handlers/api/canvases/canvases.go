// Package canvases exposes the canvas document CRUD and the snapshot save
// and load surface the editor persists through.
package canvases

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"canvascrafters/core"
	"canvascrafters/middleware"
	"canvascrafters/raster"
	"canvascrafters/tools"
)

const (
	maxDimension  = 4096
	thumbnailEdge = 256
)

type createRequest struct {
	Title           string          `json:"title"`
	Width           int             `json:"width"`
	Height          int             `json:"height"`
	BackgroundColor string          `json:"backgroundColor"`
	Visibility      core.Visibility `json:"visibility"`
}

// HandleCreate creates a canvas document with an initial blank snapshot.
// Dimensions are fixed here for the lifetime of the canvas.
func HandleCreate(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Width < 1 || req.Height < 1 || req.Width > maxDimension || req.Height > maxDimension {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "canvas dimensions must be between 1 and 4096"})
			return
		}
		if req.Visibility == "" {
			req.Visibility = core.VisibilityPrivate
		}
		if req.BackgroundColor == "" {
			req.BackgroundColor = "#ffffff"
		}
		background, err := tools.ParseColor(req.BackgroundColor)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "invalid background color"})
			return
		}

		surface := raster.New(req.Width, req.Height, background)
		snapshot, err := raster.EncodePNG(surface)
		if err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "failed to render canvas"})
			return
		}
		thumb, err := raster.Thumbnail(surface, thumbnailEdge)
		if err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "failed to render thumbnail"})
			return
		}

		canvas := &core.Canvas{
			OwnerID:         userID,
			Title:           req.Title,
			Width:           req.Width,
			Height:          req.Height,
			BackgroundColor: req.BackgroundColor,
			Visibility:      req.Visibility,
			Snapshot:        snapshot,
			Thumbnail:       base64.StdEncoding.EncodeToString(thumb),
		}
		id, err := store.Create(r.Context(), canvas)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to create canvas")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "failed to create canvas"})
			return
		}
		canvas.ID = id
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, canvas)
	}
}

// HandleList lists the caller's canvases, without snapshot blobs.
func HandleList(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		canvases, err := store.List(r.Context(), userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to list canvases")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "failed to list canvases"})
			return
		}
		if canvases == nil {
			canvases = []*core.Canvas{}
		}
		render.JSON(w, r, canvases)
	}
}

// HandleExplore lists public canvases for the gallery, paginated with
// limit and offset query parameters.
func HandleExplore(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if limit <= 0 || limit > 100 {
			limit = 24
		}
		if offset < 0 {
			offset = 0
		}
		canvases, err := store.ListPublic(r.Context(), limit, offset)
		if err != nil {
			logrus.WithError(err).Error("Failed to list public canvases")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "failed to list canvases"})
			return
		}
		if canvases == nil {
			canvases = []*core.Canvas{}
		}
		render.JSON(w, r, canvases)
	}
}

// HandleGet returns one canvas with its snapshot, after a permission check,
// and bumps the view counter.
func HandleGet(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		canvas, ok := fetch(w, r, store)
		if !ok {
			return
		}
		userID := middleware.UserID(r)
		if !canvas.CanView(userID) {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]string{"error": core.ErrPermissionDenied.Error()})
			return
		}
		if err := store.IncrementViews(r.Context(), canvas.ID); err != nil {
			logrus.WithError(err).WithField("canvas_id", canvas.ID).Warn("Failed to bump view counter")
		}
		render.JSON(w, r, canvas)
	}
}

type saveSnapshotRequest struct {
	Snapshot string `json:"snapshot"` // base64 PNG
}

// HandleSaveSnapshot overwrites the canvas snapshot. The PNG must match the
// document's dimensions; the thumbnail is regenerated server-side.
func HandleSaveSnapshot(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		canvas, ok := fetch(w, r, store)
		if !ok {
			return
		}
		userID := middleware.UserID(r)
		if !canvas.CanEdit(userID) {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]string{"error": core.ErrPermissionDenied.Error()})
			return
		}

		var req saveSnapshotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "invalid request body"})
			return
		}
		snapshot, err := base64.StdEncoding.DecodeString(req.Snapshot)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "malformed snapshot"})
			return
		}

		surface, err := raster.DecodePNG(snapshot, canvas.Width, canvas.Height)
		if err != nil {
			msg := "canvas could not be loaded"
			if !errors.Is(err, core.ErrDimensionMismatch) {
				msg = "malformed snapshot"
			}
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": msg})
			return
		}
		thumb, err := raster.Thumbnail(surface, thumbnailEdge)
		if err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "failed to render thumbnail"})
			return
		}

		if err := store.SaveSnapshot(r.Context(), canvas.ID, snapshot,
			base64.StdEncoding.EncodeToString(thumb)); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"canvas_id": canvas.ID,
				"user_id":   userID,
			}).Error("Failed to save canvas")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": core.ErrSaveFailed.Error()})
			return
		}
		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"status": "saved"})
	}
}

type updateMetaRequest struct {
	Title      string          `json:"title"`
	Visibility core.Visibility `json:"visibility"`
}

// HandleUpdateMeta updates title and visibility. Owner only.
func HandleUpdateMeta(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		canvas, ok := fetchOwned(w, r, store)
		if !ok {
			return
		}
		var req updateMetaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Visibility != core.VisibilityPublic && req.Visibility != core.VisibilityPrivate {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "visibility must be public or private"})
			return
		}
		if err := store.UpdateMeta(r.Context(), canvas.ID, req.Title, req.Visibility); err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "failed to update canvas"})
			return
		}
		render.Status(r, http.StatusOK)
	}
}

// HandleAddCollaborator grants another user view or edit access. Owner only.
func HandleAddCollaborator(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		canvas, ok := fetchOwned(w, r, store)
		if !ok {
			return
		}
		var collab core.Collaborator
		if err := json.NewDecoder(r.Body).Decode(&collab); err != nil || collab.UserID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "invalid collaborator"})
			return
		}
		if collab.Permission != core.PermissionView && collab.Permission != core.PermissionEdit {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "permission must be view or edit"})
			return
		}
		if err := store.AddCollaborator(r.Context(), canvas.ID, collab); err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "failed to add collaborator"})
			return
		}
		render.Status(r, http.StatusOK)
	}
}

// HandleLike bumps the like counter of a viewable canvas.
func HandleLike(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		canvas, ok := fetch(w, r, store)
		if !ok {
			return
		}
		if !canvas.CanView(middleware.UserID(r)) {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]string{"error": core.ErrPermissionDenied.Error()})
			return
		}
		if err := store.Like(r.Context(), canvas.ID); err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "failed to like canvas"})
			return
		}
		render.Status(r, http.StatusOK)
	}
}

// HandleDelete soft-deletes a canvas. Owner only.
func HandleDelete(store core.CanvasStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		canvas, ok := fetchOwned(w, r, store)
		if !ok {
			return
		}
		if err := store.Delete(r.Context(), canvas.ID); err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "failed to delete canvas"})
			return
		}
		render.Status(r, http.StatusOK)
	}
}

func fetch(w http.ResponseWriter, r *http.Request, store core.CanvasStore) (*core.Canvas, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "canvas id is required"})
		return nil, false
	}
	canvas, err := store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": core.ErrNotFound.Error()})
			return nil, false
		}
		logrus.WithError(err).WithField("canvas_id", id).Error("Failed to get canvas")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "failed to get canvas"})
		return nil, false
	}
	return canvas, true
}

func fetchOwned(w http.ResponseWriter, r *http.Request, store core.CanvasStore) (*core.Canvas, bool) {
	canvas, ok := fetch(w, r, store)
	if !ok {
		return nil, false
	}
	if canvas.OwnerID != middleware.UserID(r) {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, map[string]string{"error": core.ErrPermissionDenied.Error()})
		return nil, false
	}
	return canvas, true
}
