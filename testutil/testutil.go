// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/secret-ballot/auth"
	"github.com/danielhkuo/secret-ballot/ballot"
	"github.com/danielhkuo/secret-ballot/cliparse"
	"github.com/danielhkuo/secret-ballot/db"
	"github.com/danielhkuo/secret-ballot/kvstore"
	"github.com/danielhkuo/secret-ballot/models"
)

// TestWebhookSecret signs webhook bodies in tests that enable signatures.
const TestWebhookSecret = "test-webhook-secret"

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestDB opens an in-memory sqlite database with the schema applied
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// NewTestEngine returns an engine over a fresh in-memory store
func NewTestEngine(t *testing.T, listeners ...ballot.Listener) *ballot.Engine {
	t.Helper()
	return ballot.NewStoreEngine(kvstore.NewMemory(), ballot.Dependencies{
		Listeners: listeners,
		Logger:    DiscardLogger(),
	})
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		StoreType:          cliparse.StoreMemory,
		KafkaTopic:         "poll-events",
		RateLimitPerMinute: 0,
		LogLevel:           slog.LevelInfo,
	}
}

// CreateTestPoll publishes a poll by author with the given options and
// returns its id
func CreateTestPoll(t *testing.T, e *ballot.Engine, author, question string, options ...string) int {
	t.Helper()
	ctx := context.Background()

	if err := e.CreateDraft(ctx, author, question); err != nil {
		t.Fatalf("Failed to create draft: %v", err)
	}
	for _, opt := range options {
		if _, err := e.AddOption(ctx, author, opt); err != nil {
			t.Fatalf("Failed to add option %q: %v", opt, err)
		}
	}
	poll, err := e.FinishDraft(ctx, author)
	if err != nil {
		t.Fatalf("Failed to publish poll: %v", err)
	}
	return poll.ID
}

// ChatRequest builds a POST /messages request. A non-empty secret signs the
// body.
func ChatRequest(user, room, text, secret string) *http.Request {
	body, _ := json.Marshal(models.ChatMessageRequest{User: user, Room: room, Text: text})
	req := httptest.NewRequest("POST", "/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(auth.SignatureHeader, auth.SignBody(body, secret))
	}
	return req
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
