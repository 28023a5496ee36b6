// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/secret-ballot/ballot"
	"github.com/danielhkuo/secret-ballot/middleware"
	"github.com/danielhkuo/secret-ballot/models"
)

type PollHandler struct {
	engine *ballot.Engine
}

func NewPollHandler(engine *ballot.Engine) *PollHandler {
	return &PollHandler{engine: engine}
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.engine.ListPolls(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.PollListResponse{Polls: polls})
}

// GetPoll handles GET /polls/{id}
// Scores are left out; they are only shown through the results endpoint.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	h.writePoll(w, r, false)
}

// GetResults handles GET /polls/{id}/results
func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	h.writePoll(w, r, true)
}

func (h *PollHandler) writePoll(w http.ResponseWriter, r *http.Request, showScores bool) {
	id, ok := pollIDParam(w, r)
	if !ok {
		return
	}

	poll, err := h.engine.Poll(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ballot.View(poll, showScores))
}

// pollIDParam reads {id}, writing a 400 when it is not a positive integer.
func pollIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id must be a positive integer")
		return 0, false
	}
	return id, true
}

// mapError translates engine errors to HTTP status codes.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, ballot.ErrPollNotFound):
		return http.StatusNotFound, "Poll not found"
	case errors.Is(err, ballot.ErrOptionNotFound):
		return http.StatusNotFound, "Option not found"
	case errors.Is(err, ballot.ErrEmptyRepository):
		return http.StatusNotFound, "No polls have been published"
	case errors.Is(err, ballot.ErrNoDraft):
		return http.StatusNotFound, "No poll in progress"
	case errors.Is(err, ballot.ErrAlreadyVoted):
		return http.StatusConflict, "Already voted on this poll"
	case errors.Is(err, ballot.ErrDraftConflict):
		return http.StatusConflict, "A poll is already in progress"
	case errors.Is(err, ballot.ErrTooManyOptions), errors.Is(err, ballot.ErrEmptyText):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Storage error"
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	status, msg := mapError(err)
	if status == http.StatusInternalServerError {
		slog.Error("poll store failed", "error", err)
	}
	middleware.ErrorResponse(w, status, msg)
}
