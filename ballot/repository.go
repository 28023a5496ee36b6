// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/danielhkuo/secret-ballot/kvstore"
	"github.com/danielhkuo/secret-ballot/models"
)

// Polls keeps published polls in the polls record, ordered by id, and the
// last assigned id in polls_max_id. Writes go through kvstore.Store.Update.
type Polls struct {
	kv   kvstore.Store
	intn func(n int) int
}

// NewPolls returns a repository over kv. intn picks the random poll index and
// defaults to math/rand/v2.IntN.
func NewPolls(kv kvstore.Store, intn func(n int) int) *Polls {
	if intn == nil {
		intn = rand.IntN
	}
	return &Polls{kv: kv, intn: intn}
}

func (p *Polls) load(ctx context.Context) ([]models.Poll, error) {
	var polls []models.Poll
	if _, err := p.kv.Get(ctx, models.KeyPolls, &polls); err != nil {
		return nil, fmt.Errorf("failed to load polls: %w", err)
	}
	return polls, nil
}

// update applies fn to the stored polls atomically. Errors from fn come back
// unwrapped and leave the record as it was.
func (p *Polls) update(ctx context.Context, fn func(polls *[]models.Poll) error) error {
	var polls []models.Poll
	var fnErr error
	err := p.kv.Update(ctx, models.KeyPolls, &polls, func(bool) error {
		fnErr = fn(&polls)
		if fnErr == nil && polls == nil {
			polls = []models.Poll{}
		}
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("failed to save polls: %w", err)
	}
	return nil
}

// Publish takes the next id from the counter, then stores the poll. The
// counter is advanced first so an id is never handed out twice, even when
// storing the poll itself fails.
func (p *Polls) Publish(ctx context.Context, draft models.DraftPoll) (models.Poll, error) {
	var id int
	err := p.kv.Update(ctx, models.KeyPollsMaxID, &id, func(bool) error {
		id++
		return nil
	})
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to advance poll counter: %w", err)
	}

	d := draft.Clone()
	poll := models.Poll{
		ID:       id,
		Question: d.Question,
		Author:   d.Author,
		Options:  d.Options,
	}
	err = p.update(ctx, func(polls *[]models.Poll) error {
		// Concurrent publishers may store out of id order.
		at := slices.IndexFunc(*polls, func(existing models.Poll) bool { return existing.ID > id })
		if at < 0 {
			at = len(*polls)
		}
		*polls = slices.Insert(*polls, at, poll)
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}
	return poll.Clone(), nil
}

func (p *Polls) Get(ctx context.Context, id int) (models.Poll, error) {
	polls, err := p.load(ctx)
	if err != nil {
		return models.Poll{}, err
	}
	i := indexOf(polls, id)
	if i < 0 {
		return models.Poll{}, ErrPollNotFound
	}
	return polls[i].Clone(), nil
}

func (p *Polls) List(ctx context.Context) ([]models.PollSummary, error) {
	polls, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.PollSummary, 0, len(polls))
	for _, poll := range polls {
		summaries = append(summaries, models.PollSummary{ID: poll.ID, Question: poll.Question})
	}
	return summaries, nil
}

func (p *Polls) RandomPoll(ctx context.Context) (models.Poll, error) {
	polls, err := p.load(ctx)
	if err != nil {
		return models.Poll{}, err
	}
	if len(polls) == 0 {
		return models.Poll{}, ErrEmptyRepository
	}
	return polls[p.intn(len(polls))].Clone(), nil
}

func (p *Polls) IncrementScore(ctx context.Context, id, optionIndex int) (models.Poll, error) {
	return p.adjustScore(ctx, id, optionIndex, 1)
}

// DecrementScore undoes an IncrementScore. Scores never drop below zero.
func (p *Polls) DecrementScore(ctx context.Context, id, optionIndex int) (models.Poll, error) {
	return p.adjustScore(ctx, id, optionIndex, -1)
}

func (p *Polls) adjustScore(ctx context.Context, id, optionIndex, delta int) (models.Poll, error) {
	var updated models.Poll
	err := p.update(ctx, func(polls *[]models.Poll) error {
		i := indexOf(*polls, id)
		if i < 0 {
			return ErrPollNotFound
		}
		poll := &(*polls)[i]
		if optionIndex < 0 || optionIndex >= len(poll.Options) {
			return ErrOptionNotFound
		}

		opt := &poll.Options[optionIndex]
		opt.Score += delta
		if opt.Score < 0 {
			opt.Score = 0
		}
		updated = poll.Clone()
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}
	return updated, nil
}

// Reset removes every poll and rewinds the counter to 0, both in one delete.
func (p *Polls) Reset(ctx context.Context) error {
	if err := p.kv.Delete(ctx, models.KeyPolls, models.KeyPollsMaxID); err != nil {
		return fmt.Errorf("failed to reset polls: %w", err)
	}
	return nil
}

func indexOf(polls []models.Poll, id int) int {
	for i := range polls {
		if polls[i].ID == id {
			return i
		}
	}
	return -1
}
