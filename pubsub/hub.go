// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package pubsub pushes live poll results to websocket subscribers.
package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/danielhkuo/secret-ballot/ballot"
	"github.com/danielhkuo/secret-ballot/models"
)

const (
	broadcastBuffer = 256
	clientBuffer    = 16
)

// Message is a payload for every subscriber of one poll, or of all polls
// when All is set. A Disconnect message is delivered to everyone and then
// every subscriber is dropped.
type Message struct {
	PollID     int
	All        bool
	Disconnect bool
	Data       []byte
}

// Hub tracks subscribers per poll. All bookkeeping happens on the Run
// goroutine; other goroutines talk to it through channels.
type Hub struct {
	clients    map[int]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[int]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves the hub until ctx is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.disconnectAll()
			return

		case client := <-h.register:
			conns := h.clients[client.pollID]
			if conns == nil {
				conns = make(map[*Client]bool)
				h.clients[client.pollID] = conns
			}
			conns[client] = true
			h.logger.Debug("live subscriber joined", "poll_id", client.pollID, "client", client.ID)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.dispatch(msg)
		}
	}
}

func (h *Hub) dispatch(msg *Message) {
	if !msg.All && !msg.Disconnect {
		h.deliver(h.clients[msg.PollID], msg.Data)
		return
	}
	for _, conns := range h.clients {
		h.deliver(conns, msg.Data)
	}
	if msg.Disconnect {
		h.disconnectAll()
	}
}

// disconnectAll closes every send channel, which makes WritePump close the
// socket.
func (h *Hub) disconnectAll() {
	for _, conns := range h.clients {
		for c := range conns {
			close(c.send)
		}
	}
	h.clients = make(map[int]map[*Client]bool)
}

func (h *Hub) remove(client *Client) {
	conns := h.clients[client.pollID]
	if conns == nil {
		return
	}
	if _, ok := conns[client]; ok {
		delete(conns, client)
		close(client.send)
		if len(conns) == 0 {
			delete(h.clients, client.pollID)
		}
	}
}

// deliver drops clients whose buffer is full.
func (h *Hub) deliver(conns map[*Client]bool, data []byte) {
	for c := range conns {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow live subscriber", "poll_id", c.pollID, "client", c.ID)
			h.remove(c)
		}
	}
}

// Subscribe adds c to the hub. It reports false once the hub has stopped.
func (h *Hub) Subscribe(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unsubscribe(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues msg without blocking. A full queue drops the message.
func (h *Hub) Publish(msg *Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("live broadcast queue full, dropping update", "poll_id", msg.PollID)
	}
}

// OnEvent pushes the updated tally after each vote. When poll data is
// flushed every subscriber is told and then disconnected, since poll ids
// start over and would name different polls.
func (h *Hub) OnEvent(_ context.Context, ev models.Event) {
	switch ev.Type {
	case models.EventVoteCast:
		if ev.Poll == nil {
			return
		}
		view := ballot.View(*ev.Poll, true)
		data, err := json.Marshal(models.LiveUpdate{EventType: ev.Type, Poll: &view})
		if err != nil {
			h.logger.Error("failed to encode live update", "poll_id", ev.PollID, "error", err)
			return
		}
		h.Publish(&Message{PollID: ev.PollID, Data: data})

	case models.EventPollsReset:
		data, err := json.Marshal(models.LiveUpdate{EventType: ev.Type})
		if err != nil {
			return
		}
		h.Publish(&Message{Disconnect: true, Data: data})
	}
}
