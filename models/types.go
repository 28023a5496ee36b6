// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Backing store record keys
const (
	KeyPolls           = "polls"
	KeyPollsInProgress = "polls_in_progress"
	KeyPollsMaxID      = "polls_max_id"
	KeyPollUserVotes   = "poll_user_votes"
)

// Event type constants
const (
	EventPollPublished = "poll.published"
	EventVoteCast      = "vote.cast"
	EventPollsReset    = "polls.reset"
)

// Domain types

type Option struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type Poll struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Author   string   `json:"author"`
	Options  []Option `json:"options"`
}

// Clone returns a copy that shares no option storage with p.
func (p Poll) Clone() Poll {
	p.Options = cloneOptions(p.Options)
	return p
}

// DraftPoll is a poll still being authored. It has no id until published.
type DraftPoll struct {
	Author   string   `json:"author"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

func (d DraftPoll) Clone() DraftPoll {
	d.Options = cloneOptions(d.Options)
	return d
}

type PollSummary struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
}

// Event is emitted after a state change is committed. It never carries the
// identity of a voter.
type Event struct {
	Type       string    `json:"event_type"`
	PollID     int       `json:"poll_id,omitempty"`
	Poll       *Poll     `json:"poll,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func cloneOptions(opts []Option) []Option {
	if opts == nil {
		return []Option{}
	}
	out := make([]Option, len(opts))
	copy(out, opts)
	return out
}

// Request types

type ChatMessageRequest struct {
	User string `json:"user"`
	Room string `json:"room"`
	Text string `json:"text"`
}

// Response types

type ChatMessageResponse struct {
	Replies []string `json:"replies"`
}

type PollListResponse struct {
	Polls []PollSummary `json:"polls"`
}

type OptionView struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	Score *int   `json:"score,omitempty"`
}

type PollView struct {
	ID       int          `json:"id"`
	Question string       `json:"question"`
	Author   string       `json:"author"`
	Options  []OptionView `json:"options"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LiveUpdate is pushed to live result subscribers.
type LiveUpdate struct {
	EventType string    `json:"event_type"`
	Poll      *PollView `json:"poll,omitempty"`
}
