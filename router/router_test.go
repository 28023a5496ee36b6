// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/secret-ballot/ballot"
	"github.com/danielhkuo/secret-ballot/cliparse"
	"github.com/danielhkuo/secret-ballot/kvstore"
	"github.com/danielhkuo/secret-ballot/metrics"
	"github.com/danielhkuo/secret-ballot/models"
	"github.com/danielhkuo/secret-ballot/pubsub"
	"github.com/danielhkuo/secret-ballot/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *ballot.Engine) {
	t.Helper()
	return newTestRouterWithConfig(t, testutil.GetTestConfig())
}

func newTestRouterWithConfig(t *testing.T, cfg cliparse.Config) (http.Handler, *ballot.Engine) {
	t.Helper()

	reg := prometheus.NewRegistry()
	engine := ballot.NewStoreEngine(kvstore.NewSQLStore(testutil.SetupTestDB(t), kvstore.DialectSQLite), ballot.Dependencies{
		Listeners: []ballot.Listener{metrics.NewMetrics(reg)},
		Logger:    testutil.DiscardLogger(),
	})

	mux := NewRouter(Deps{
		Engine:   engine,
		Hub:      pubsub.NewHub(testutil.DiscardLogger()),
		Gatherer: reg,
		Logger:   testutil.DiscardLogger(),
	}, cfg)
	return mux, engine
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "secret-ballot API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	mux, engine := newTestRouter(t)
	testutil.CreateTestPoll(t, engine, "alice", "Lunch?", "soup", "salad")

	testCases := []struct {
		method   string
		path     string
		expected int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/", http.StatusOK},
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/polls", http.StatusOK},
		{"GET", "/polls/1", http.StatusOK},
		{"GET", "/polls/1/results", http.StatusOK},
		{"GET", "/polls/2", http.StatusNotFound},
		{"GET", "/polls/abc", http.StatusBadRequest},
		{"GET", "/polls/2/live", http.StatusNotFound},
		{"POST", "/messages", http.StatusBadRequest},
		{"GET", "/nowhere", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expected {
				t.Errorf("Expected %d for %s %s, got %d. Body: %s", tc.expected, tc.method, tc.path, w.Code, w.Body.String())
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},  // Only GET is defined
		{"GET", "/messages"}, // Only POST is defined
		{"DELETE", "/polls/1"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("OPTIONS", "/polls", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Errorf("Expected origin to be echoed, got %q", got)
	}
}

func TestChatThroughRouter(t *testing.T) {
	mux, _ := newTestRouter(t)

	send := func(user, room, text string) models.ChatMessageResponse {
		t.Helper()
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.ChatRequest(user, room, text, ""))
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.ChatMessageResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	send("alice", "alice", `poll create "Tabs or spaces?"`)
	send("alice", "alice", `poll add option "tabs"`)
	send("alice", "alice", `poll add option "spaces"`)
	send("alice", "alice", "poll done")

	resp := send("bob", "bob", "poll vote 1 a")
	if len(resp.Replies) != 1 || resp.Replies[0] != `You voted for tabs on poll "Tabs or spaces?"` {
		t.Errorf("Unexpected vote reply %q", resp.Replies)
	}

	resp = send("carol", "general", "poll list")
	if len(resp.Replies) < 2 || resp.Replies[1] != "1. Tabs or spaces?" {
		t.Errorf("Unexpected list reply %q", resp.Replies)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mux, engine := newTestRouter(t)
	id := testutil.CreateTestPoll(t, engine, "alice", "Coffee?", "yes", "no")

	if _, err := engine.CastVote(context.Background(), "bob", id, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.CastVote(context.Background(), "bob", id, "b"); err == nil {
		t.Fatal("Expected duplicate vote to fail")
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	for _, want := range []string{
		"secret_ballot_polls_published_total 1",
		"secret_ballot_votes_cast_total 1",
		`secret_ballot_votes_rejected_total{reason="already_voted"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected /metrics to contain %q", want)
		}
	}
}

func TestUnsignedWebhookLimitedPerIP(t *testing.T) {
	cfg := testutil.GetTestConfig()
	cfg.RateLimitPerMinute = 2
	mux, _ := newTestRouterWithConfig(t, cfg)

	// Each request claims a new user name from the same address
	codes := make([]int, 0, 3)
	for _, user := range []string{"u1", "u2", "u3"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.ChatRequest(user, user, "poll list", ""))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("Expected first two requests allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after the IP budget is spent, got %d", codes[2])
	}
}

func TestSignedWebhookLimitedPerUser(t *testing.T) {
	cfg := testutil.GetTestConfig()
	cfg.RateLimitPerMinute = 2
	cfg.WebhookSecret = testutil.TestWebhookSecret
	mux, _ := newTestRouterWithConfig(t, cfg)

	send := func(user string) int {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.ChatRequest(user, user, "poll list", testutil.TestWebhookSecret))
		return w.Code
	}

	for _, user := range []string{"u1", "u2", "u3", "u4"} {
		if code := send(user); code != http.StatusOK {
			t.Errorf("Expected signed delivery for %s allowed, got %d", user, code)
		}
	}
	send("u1")
	if code := send("u1"); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 once u1 spent its budget, got %d", code)
	}
}
