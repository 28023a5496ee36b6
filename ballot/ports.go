// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"

	"github.com/danielhkuo/secret-ballot/models"
)

// DraftStore holds at most one in-progress poll per author.
type DraftStore interface {
	Create(ctx context.Context, author, question string) error
	AddOption(ctx context.Context, author, name string) (models.DraftPoll, error)
	Preview(ctx context.Context, author string) (models.DraftPoll, error)
	Finalize(ctx context.Context, author string) (models.DraftPoll, error)
	// Restore puts back a draft removed by Finalize when publication failed.
	Restore(ctx context.Context, draft models.DraftPoll) error
	Reset(ctx context.Context) error
}

// PollRepository stores published polls and assigns their ids.
type PollRepository interface {
	Publish(ctx context.Context, draft models.DraftPoll) (models.Poll, error)
	Get(ctx context.Context, id int) (models.Poll, error)
	List(ctx context.Context) ([]models.PollSummary, error)
	RandomPoll(ctx context.Context) (models.Poll, error)
	IncrementScore(ctx context.Context, id, optionIndex int) (models.Poll, error)
	DecrementScore(ctx context.Context, id, optionIndex int) (models.Poll, error)
	Reset(ctx context.Context) error
}

// VoteLedger records which voter has voted on which poll.
type VoteLedger interface {
	HasVoted(ctx context.Context, voter string, id int) (bool, error)
	RecordVote(ctx context.Context, voter string, id int) error
	Reset(ctx context.Context) error
}

// Listener is notified after a change has been committed. Listeners must not
// block; slow work belongs on the listener's own goroutine.
type Listener interface {
	OnEvent(ctx context.Context, ev models.Event)
}

// RejectionListener is implemented by listeners that also track refused votes.
type RejectionListener interface {
	OnVoteRejected(reason string)
}
