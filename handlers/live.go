// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/danielhkuo/secret-ballot/ballot"
	"github.com/danielhkuo/secret-ballot/models"
	"github.com/danielhkuo/secret-ballot/pubsub"
)

type LiveHandler struct {
	engine *ballot.Engine
	hub    *pubsub.Hub
}

func NewLiveHandler(engine *ballot.Engine, hub *pubsub.Hub) *LiveHandler {
	return &LiveHandler{engine: engine, hub: hub}
}

// Watch handles GET /polls/{id}/live
// Upgrades to a websocket, sends the current results, then pushes the new
// tally after every vote on the poll.
func (h *LiveHandler) Watch(w http.ResponseWriter, r *http.Request) {
	id, ok := pollIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.engine.Poll(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		slog.Warn("websocket upgrade failed", "poll_id", id, "error", err)
		return
	}

	client, err := h.hub.NewClient(conn, id)
	if err != nil {
		slog.Error("failed to create live client", "error", err)
		conn.Close(websocket.StatusInternalError, "")
		return
	}

	if !h.hub.Subscribe(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	// Read the poll again now that updates are queued for this client, so
	// no vote falls between the snapshot and the first update.
	poll, err := h.engine.Poll(r.Context(), id)
	if err == nil {
		view := ballot.View(poll, true)
		var snapshot []byte
		if snapshot, err = json.Marshal(models.LiveUpdate{EventType: "snapshot", Poll: &view}); err == nil {
			wctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			err = conn.Write(wctx, websocket.MessageText, snapshot)
			cancel()
		}
	}
	if err != nil {
		h.hub.Unsubscribe(client)
		conn.Close(websocket.StatusInternalError, "")
		return
	}

	// The request context ends when the handler returns, so the writer
	// gets its own.
	go client.WritePump(context.Background())
	client.ReadPump(r.Context())
}
