// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package events publishes committed poll changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/danielhkuo/secret-ballot/models"
)

// Envelope is the JSON value of every Kafka message.
type Envelope struct {
	EventID    string       `json:"event_id"`
	EventType  string       `json:"event_type"`
	OccurredAt time.Time    `json:"occurred_at"`
	PollID     int          `json:"poll_id,omitempty"`
	Poll       *models.Poll `json:"poll,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher forwards engine events to a topic. Messages are keyed by
// poll id so the hash balancer keeps each poll's events in order.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
	newID  func() string
}

// NewKafkaPublisher builds an asynchronous writer. Delivery failures are
// logged from the writer's completion callback and never reach the engine.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				logger.Error("failed to deliver poll events", "count", len(msgs), "topic", topic, "error", err)
			}
		},
	}
	return newPublisher(w, logger)
}

func newPublisher(w messageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		logger: logger,
		newID:  func() string { return uuid.NewString() },
	}
}

func (kp *KafkaPublisher) buildMessage(ev models.Event) (kafka.Message, error) {
	env := Envelope{
		EventID:    kp.newID(),
		EventType:  ev.Type,
		OccurredAt: ev.OccurredAt,
		PollID:     ev.PollID,
		Poll:       ev.Poll,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.Itoa(ev.PollID)),
		Value: value,
		Time:  ev.OccurredAt,
	}, nil
}

// OnEvent queues ev for delivery.
func (kp *KafkaPublisher) OnEvent(ctx context.Context, ev models.Event) {
	msg, err := kp.buildMessage(ev)
	if err != nil {
		kp.logger.Error("failed to build poll event", "event_type", ev.Type, "error", err)
		return
	}
	if err := kp.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		kp.logger.Error("failed to write poll event", "event_type", ev.Type, "poll_id", ev.PollID, "error", err)
	}
}

func (kp *KafkaPublisher) Close() error {
	if err := kp.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}
