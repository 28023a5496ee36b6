// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/danielhkuo/secret-ballot/models"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher(w *fakeWriter) *KafkaPublisher {
	kp := newPublisher(w, slog.New(slog.NewTextHandler(io.Discard, nil)))
	kp.newID = func() string { return "evt-1" }
	return kp
}

func TestOnEventWritesEnvelope(t *testing.T) {
	w := &fakeWriter{}
	kp := newTestPublisher(w)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	poll := &models.Poll{ID: 7, Question: "Q", Author: "alice", Options: []models.Option{{Name: "x", Score: 1}}}

	kp.OnEvent(context.Background(), models.Event{Type: models.EventVoteCast, PollID: 7, Poll: poll, OccurredAt: at})

	if len(w.msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "7" {
		t.Errorf("Expected key 7, got %q", msg.Key)
	}
	if !msg.Time.Equal(at) {
		t.Errorf("Expected time %v, got %v", at, msg.Time)
	}

	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		t.Fatal(err)
	}
	if env.EventID != "evt-1" || env.EventType != models.EventVoteCast || env.PollID != 7 {
		t.Errorf("Unexpected envelope %+v", env)
	}
	if env.Poll == nil || env.Poll.Options[0].Score != 1 {
		t.Errorf("Expected poll snapshot, got %+v", env.Poll)
	}
}

func TestEnvelopeHasNoVoter(t *testing.T) {
	w := &fakeWriter{}
	kp := newTestPublisher(w)

	kp.OnEvent(context.Background(), models.Event{Type: models.EventPollsReset})

	var raw map[string]any
	if err := json.Unmarshal(w.msgs[0].Value, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"voter", "user", "poll", "poll_id"} {
		if _, ok := raw[key]; ok {
			t.Errorf("Unexpected field %q in reset envelope", key)
		}
	}
}

func TestOnEventWriteErrorIsSwallowed(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	kp := newTestPublisher(w)

	// Must not panic or block.
	kp.OnEvent(context.Background(), models.Event{Type: models.EventPollPublished, PollID: 1})

	if len(w.msgs) != 0 {
		t.Errorf("Expected nothing written, got %d", len(w.msgs))
	}
}

func TestDefaultEventIDsAreUUIDs(t *testing.T) {
	kp := newPublisher(&fakeWriter{}, slog.Default())

	a, b := kp.newID(), kp.newID()
	if len(a) != 36 || a == b {
		t.Errorf("Expected distinct UUIDs, got %q and %q", a, b)
	}
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	if err := newTestPublisher(w).Close(); err != nil {
		t.Fatal(err)
	}
	if !w.closed {
		t.Error("Expected writer to be closed")
	}
}
