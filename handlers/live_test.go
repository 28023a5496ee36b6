// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/secret-ballot/models"
	"github.com/danielhkuo/secret-ballot/pubsub"
	"github.com/danielhkuo/secret-ballot/testutil"
)

func readUpdate(t *testing.T, ctx context.Context, conn *websocket.Conn) models.LiveUpdate {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read live update: %v", err)
	}
	var upd models.LiveUpdate
	if err := json.Unmarshal(data, &upd); err != nil {
		t.Fatal(err)
	}
	return upd
}

func TestWatch_StreamsVotes(t *testing.T) {
	hub := pubsub.NewHub(testutil.DiscardLogger())
	engine := testutil.NewTestEngine(t, hub)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	id := testutil.CreateTestPoll(t, engine, "alice", "Live?", "yes", "no")

	r := chi.NewRouter()
	r.Get("/polls/{id}/live", NewLiveHandler(engine, hub).Watch)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + fmt.Sprintf("/polls/%d/live", id)
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	snap := readUpdate(t, ctx, conn)
	if snap.EventType != "snapshot" || snap.Poll == nil || *snap.Poll.Options[0].Score != 0 {
		t.Fatalf("Unexpected snapshot %+v", snap)
	}

	// The subscription exists before the snapshot is sent.
	if _, err := engine.CastVote(ctx, "bob", id, "a"); err != nil {
		t.Fatal(err)
	}

	upd := readUpdate(t, ctx, conn)
	if upd.EventType != models.EventVoteCast {
		t.Fatalf("Expected vote update, got %+v", upd)
	}
	if got := *upd.Poll.Options[0].Score; got != 1 {
		t.Errorf("Expected score 1, got %d", got)
	}
}

func TestWatch_UnknownPoll(t *testing.T) {
	hub := pubsub.NewHub(testutil.DiscardLogger())
	engine := testutil.NewTestEngine(t, hub)
	h := NewLiveHandler(engine, hub)

	w := httptest.NewRecorder()
	h.Watch(w, withID(httptest.NewRequest("GET", "/polls/9/live", nil), "9"))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
