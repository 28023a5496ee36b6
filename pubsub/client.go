// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pubsub

import (
	"context"
	"time"

	"github.com/coder/websocket"

	"github.com/danielhkuo/secret-ballot/auth"
)

const writeTimeout = 5 * time.Second

// Client is one websocket subscriber watching a single poll.
type Client struct {
	ID     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	pollID int
}

func (h *Hub) NewClient(conn *websocket.Conn, pollID int) (*Client, error) {
	id, err := auth.GenerateID(8)
	if err != nil {
		return nil, err
	}
	return &Client{
		ID:     id,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, clientBuffer),
		pollID: pollID,
	}, nil
}

// Send exposes the outgoing queue. It is closed when the hub drops the client.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// WritePump sends messages from the hub to the websocket connection
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	for m := range c.send {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := c.conn.Write(wctx, websocket.MessageText, m)
		cancel()
		if err != nil {
			c.hub.logger.Warn("failed to write live update", "client", c.ID, "poll_id", c.pollID, "error", err)
			return
		}
	}
}

// ReadPump discards incoming frames until the peer goes away, then
// unsubscribes the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer c.hub.Unsubscribe(c)

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				c.hub.logger.Debug("live subscriber left", "client", c.ID, "poll_id", c.pollID)
			} else {
				c.hub.logger.Debug("live subscriber read failed", "client", c.ID, "poll_id", c.pollID, "error", err)
			}
			return
		}
	}
}
