// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/secret-ballot/auth"
	"github.com/danielhkuo/secret-ballot/chat"
	"github.com/danielhkuo/secret-ballot/middleware"
	"github.com/danielhkuo/secret-ballot/models"
)

type ChatHandler struct {
	dispatcher *chat.Dispatcher
	limiter    *middleware.RateLimiter
	secret     string
}

// NewChatHandler builds the webhook handler. An empty secret disables
// signature checks; a nil limiter disables rate limiting.
func NewChatHandler(dispatcher *chat.Dispatcher, limiter *middleware.RateLimiter, secret string) *ChatHandler {
	return &ChatHandler{dispatcher: dispatcher, limiter: limiter, secret: secret}
}

// HandleMessage handles POST /messages
// Replies is empty when the text is not a poll command or is not allowed in
// the room it was sent to.
func (h *ChatHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	raw, err := middleware.ReadBody(w, r)
	if err != nil {
		if middleware.IsTooLarge(err) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Body too large")
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	if h.secret != "" {
		if err := auth.ValidateSignature(raw, r.Header.Get(auth.SignatureHeader), h.secret); err != nil {
			slog.Warn("rejected webhook delivery",
				"client", auth.HashIP(middleware.GetClientIP(r), h.secret),
				"error", err,
			)
			if errors.Is(err, auth.ErrMissingSignature) {
				middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Signature header required")
				return
			}
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid signature")
			return
		}
	}

	var req models.ChatMessageRequest
	if err := middleware.ParseJSON(raw, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.User = strings.TrimSpace(req.User)
	if req.User == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user is required")
		return
	}

	if !h.limiter.Allow(req.User) {
		middleware.ErrorResponse(w, http.StatusTooManyRequests, "Too many commands, slow down")
		return
	}

	replies := h.dispatcher.Handle(r.Context(), chat.Message{
		User: req.User,
		Room: req.Room,
		Text: req.Text,
	})
	if replies == nil {
		replies = []string{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.ChatMessageResponse{Replies: replies})
}
