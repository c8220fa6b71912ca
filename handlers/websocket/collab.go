// Package websocket implements the collaboration relay: room membership,
// presence and operation fan-out between connected editors of one canvas.
// The relay never decodes drawing operations; payloads are forwarded
// verbatim, and ordering is only guaranteed per sender. Concurrent edits
// from different senders interleave arbitrarily (last write wins per pixel).
package websocket

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"

	"canvascrafters/core"
	"canvascrafters/handlers/auth"
	"canvascrafters/raster"
)

var registry = NewRegistry()

// GetActiveRooms exposes live room occupancy for the REST listing.
func GetActiveRooms() map[string]int {
	return registry.ActiveRooms()
}

// SetupSocketIO builds the relay server over the given canvas store. The
// store is consulted once per join for the permission check and on every
// save; drawing traffic never touches it.
func SetupSocketIO(store core.CanvasStore) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)

	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}
		me := string(socket.Id())
		_ = srv.To(socketio.Room(me)).Emit("init-room")

		socket.On("join-room", func(datas ...any) {
			handleJoin(srv, socket, store, datas)
		})

		socket.On("server-broadcast", func(datas ...any) {
			handleBroadcast(socket, datas, false)
		})

		socket.On("server-volatile-broadcast", func(datas ...any) {
			handleBroadcast(socket, datas, true)
		})

		socket.On("cursor-move", func(datas ...any) {
			handleCursorMove(socket, datas)
		})

		socket.On("save-canvas", func(datas ...any) {
			handleSave(socket, store, datas)
		})

		socket.On("leave-room", func(datas ...any) {
			roomID, ok := firstString(datas)
			if !ok {
				return
			}
			socket.Leave(socketio.Room(roomID))
			announceLeave(srv, socket, roomID)
		})

		socket.On("disconnecting", func(datas ...any) {
			for _, currentRoom := range socket.Rooms().Keys() {
				roomID := string(currentRoom)
				if roomID == me {
					continue
				}
				announceLeave(srv, socket, roomID)
			}
		})

		socket.On("disconnect", func(datas ...any) {
			socket.RemoveAllListeners("")
			socket.Disconnect(true)
		})
	})

	return srv
}

// handleJoin validates the joining user's permission on the canvas before
// adding the connection to the room. A join on a private canvas by a user
// who is neither the owner nor a collaborator is refused and leaves room
// membership untouched.
func handleJoin(srv *socketio.Server, socket *socketio.Socket, store core.CanvasStore, datas []any) {
	me := string(socket.Id())
	roomID, ok := firstString(datas)
	if !ok {
		_ = socket.Emit("access-denied", map[string]any{"error": "room id is required"})
		return
	}
	token := ""
	if len(datas) > 1 {
		token, _ = datas[1].(string)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	entry, denial := authorizeJoin(ctx, store, roomID, token)
	if denial != "" {
		logrus.WithFields(logrus.Fields{
			"canvas_id": roomID,
			"reason":    denial,
		}).Warn("join refused")
		_ = socket.Emit("access-denied", map[string]any{"error": denial})
		return
	}

	room := socketio.Room(roomID)
	socket.Join(room)
	entry.SocketID = me
	count := registry.Join(roomID, entry)
	logrus.WithFields(logrus.Fields{
		"canvas_id": roomID,
		"socket_id": me,
		"users":     count,
	}).Info("user joined room")

	if count <= 1 {
		_ = srv.To(socketio.Room(me)).Emit("first-in-room")
	} else {
		_ = socket.Broadcast().To(room).Emit("user-joined", map[string]any{
			"socketId": me,
			"userId":   entry.UserID,
			"login":    entry.Login,
		})
	}
	_ = srv.In(room).Emit("room-user-change", registry.Members(roomID))
}

// authorizeJoin resolves the joining user from an optional token and checks
// view permission on the canvas. On success it returns the presence entry to
// register, without a socket ID; otherwise a denial reason for the client.
func authorizeJoin(ctx context.Context, store core.CanvasStore, roomID, token string) (Member, string) {
	var userID, login string
	if token != "" {
		claims, err := auth.ParseJWT(token)
		if err != nil {
			return Member{}, "invalid token"
		}
		userID = claims.Subject
		login = claims.Login
	}
	canvas, err := store.Get(ctx, roomID)
	if err != nil {
		return Member{}, "canvas not found"
	}
	if !canvas.CanView(userID) {
		return Member{}, core.ErrPermissionDenied.Error()
	}
	return Member{UserID: userID, Login: login, CanEdit: canvas.CanEdit(userID)}, ""
}

// handleBroadcast relays a drawing payload to everyone else in the room.
// The payload is not inspected or altered; per-sender order is preserved by
// the connection's single stream.
func handleBroadcast(socket *socketio.Socket, datas []any, volatile bool) {
	roomID, ok := firstString(datas)
	if !ok || len(datas) < 2 {
		return
	}
	if _, member := registry.Member(roomID, string(socket.Id())); !member {
		return
	}
	if volatile {
		_ = socket.Volatile().Broadcast().To(socketio.Room(roomID)).Emit("client-broadcast", datas[1:]...)
		return
	}
	_ = socket.Broadcast().To(socketio.Room(roomID)).Emit("client-broadcast", datas[1:]...)
}

// handleCursorMove updates the sender's presence entry and relays the
// position at a bounded rate. Cursor traffic is volatile: a dropped update
// is superseded by the next one anyway.
func handleCursorMove(socket *socketio.Socket, datas []any) {
	roomID, ok := firstString(datas)
	if !ok || len(datas) < 3 {
		return
	}
	x, okX := toInt(datas[1])
	y, okY := toInt(datas[2])
	if !okX || !okY {
		return
	}
	me := string(socket.Id())
	if !registry.UpdateCursor(roomID, me, x, y) {
		return
	}
	_ = socket.Volatile().Broadcast().To(socketio.Room(roomID)).Emit("cursor-update", map[string]any{
		"socketId": me,
		"x":        x,
		"y":        y,
	})
}

// handleSave persists a snapshot through the store and acknowledges the
// room. Requires edit permission and a payload that passes the same
// dimension check as the REST save; the sender keeps its local state either
// way, so a failed save is reported and safely retried.
func handleSave(socket *socketio.Socket, store core.CanvasStore, datas []any) {
	roomID, ok := firstString(datas)
	if !ok || len(datas) < 2 {
		return
	}
	me := string(socket.Id())
	member, inRoom := registry.Member(roomID, me)
	if !inRoom || !member.CanEdit {
		_ = socket.Emit("save-failed", map[string]any{"error": core.ErrPermissionDenied.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	encoded, _ := datas[1].(string)
	snapshot, denial := checkSnapshot(ctx, store, roomID, encoded)
	if denial != "" {
		_ = socket.Emit("save-failed", map[string]any{"error": denial})
		return
	}
	thumbnail := ""
	if len(datas) > 2 {
		thumbnail, _ = datas[2].(string)
	}

	if err := store.SaveSnapshot(ctx, roomID, snapshot, thumbnail); err != nil {
		logrus.WithError(err).WithField("canvas_id", roomID).Error("Failed to save canvas")
		_ = socket.Emit("save-failed", map[string]any{"error": core.ErrSaveFailed.Error()})
		return
	}
	logrus.WithFields(logrus.Fields{
		"canvas_id":   roomID,
		"data_length": len(snapshot),
	}).Info("canvas saved from relay")
	_ = socket.To(socketio.Room(roomID)).Emit("canvas-saved", map[string]any{
		"userId":  member.UserID,
		"savedAt": time.Now().UnixMilli(),
	})
	_ = socket.Emit("canvas-saved", map[string]any{
		"userId":  member.UserID,
		"savedAt": time.Now().UnixMilli(),
	})
}

// checkSnapshot decodes an uploaded snapshot and verifies it parses as a PNG
// of the canvas's exact dimensions. Nothing is stored when the check fails.
func checkSnapshot(ctx context.Context, store core.CanvasStore, roomID, encoded string) ([]byte, string) {
	snapshot, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "malformed snapshot"
	}
	canvas, err := store.Get(ctx, roomID)
	if err != nil {
		return nil, "canvas not found"
	}
	if _, err := raster.DecodePNG(snapshot, canvas.Width, canvas.Height); err != nil {
		if errors.Is(err, core.ErrDimensionMismatch) {
			return nil, core.ErrDimensionMismatch.Error()
		}
		return nil, "malformed snapshot"
	}
	return snapshot, ""
}

func announceLeave(srv *socketio.Server, socket *socketio.Socket, roomID string) {
	me := string(socket.Id())
	if _, ok := registry.Member(roomID, me); !ok {
		return
	}
	remaining := registry.Leave(roomID, me)
	logrus.WithFields(logrus.Fields{
		"canvas_id": roomID,
		"socket_id": me,
		"users":     remaining,
	}).Info("user left room")
	if remaining > 0 {
		room := socketio.Room(roomID)
		_ = srv.In(room).Emit("user-left", map[string]any{"socketId": me})
		_ = srv.In(room).Emit("room-user-change", registry.Members(roomID))
	}
}

func firstString(datas []any) (string, bool) {
	if len(datas) == 0 {
		return "", false
	}
	s, ok := datas[0].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}
