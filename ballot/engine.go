// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/secret-ballot/kvstore"
	"github.com/danielhkuo/secret-ballot/models"
)

const lockStripes = 64

// Rejection reasons reported to RejectionListeners.
const (
	ReasonPollNotFound   = "poll_not_found"
	ReasonOptionNotFound = "option_not_found"
	ReasonAlreadyVoted   = "already_voted"
)

// Dependencies wires an Engine. Drafts, Polls and Votes are required by
// NewEngine; NewStoreEngine fills any nil store from a backing store.
type Dependencies struct {
	Drafts    DraftStore
	Polls     PollRepository
	Votes     VoteLedger
	Listeners []Listener
	Logger    *slog.Logger
	Now       func() time.Time
}

// Engine orchestrates drafting, publication and voting.
//
// Every operation holds resetMu for reading so that ResetAll observes no
// operation half done. Votes on the same poll serialize on a striped poll
// lock; draft operations of the same author serialize on a striped author
// lock.
type Engine struct {
	drafts    DraftStore
	polls     PollRepository
	votes     VoteLedger
	listeners []Listener
	logger    *slog.Logger
	now       func() time.Time

	// records is set when the engine owns all of its stores on one backing
	// store, so ResetAll can clear every record in one delete.
	records kvstore.Store

	resetMu     sync.RWMutex
	pollLocks   [lockStripes]sync.Mutex
	authorLocks [lockStripes]sync.Mutex
}

// VoteReceipt is what a voter is told after a successful vote.
type VoteReceipt struct {
	PollID   int
	Question string
	Option   string
}

func NewEngine(deps Dependencies) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		drafts:    deps.Drafts,
		polls:     deps.Polls,
		votes:     deps.Votes,
		listeners: deps.Listeners,
		logger:    logger,
		now:       now,
	}
}

// NewStoreEngine builds the three stores over a single backing store.
func NewStoreEngine(kv kvstore.Store, deps Dependencies) *Engine {
	owned := deps.Drafts == nil && deps.Polls == nil && deps.Votes == nil
	if deps.Drafts == nil {
		deps.Drafts = NewDrafts(kv)
	}
	if deps.Polls == nil {
		deps.Polls = NewPolls(kv, nil)
	}
	if deps.Votes == nil {
		deps.Votes = NewLedger(kv)
	}
	e := NewEngine(deps)
	if owned {
		e.records = kv
	}
	return e
}

// Subscribe adds a listener. It must be called before the engine serves
// requests.
func (e *Engine) Subscribe(l Listener) {
	e.listeners = append(e.listeners, l)
}

func (e *Engine) pollLock(id int) *sync.Mutex {
	return &e.pollLocks[uint(id)%lockStripes]
}

func (e *Engine) authorLock(author string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(author))
	return &e.authorLocks[h.Sum32()%lockStripes]
}

// CreateDraft starts a draft for author. A second draft is refused with
// ErrDraftConflict and the first one is left as it was.
func (e *Engine) CreateDraft(ctx context.Context, author, question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyText
	}

	e.resetMu.RLock()
	defer e.resetMu.RUnlock()
	l := e.authorLock(author)
	l.Lock()
	defer l.Unlock()

	if err := e.drafts.Create(ctx, author, question); err != nil {
		return err
	}
	e.logger.Info("draft created", "author", author)
	return nil
}

func (e *Engine) AddOption(ctx context.Context, author, name string) (models.DraftPoll, error) {
	if strings.TrimSpace(name) == "" {
		return models.DraftPoll{}, ErrEmptyText
	}

	e.resetMu.RLock()
	defer e.resetMu.RUnlock()
	l := e.authorLock(author)
	l.Lock()
	defer l.Unlock()

	return e.drafts.AddOption(ctx, author, name)
}

func (e *Engine) PreviewDraft(ctx context.Context, author string) (models.DraftPoll, error) {
	e.resetMu.RLock()
	defer e.resetMu.RUnlock()
	l := e.authorLock(author)
	l.Lock()
	defer l.Unlock()

	return e.drafts.Preview(ctx, author)
}

// FinishDraft publishes author's draft under a new id. If publication fails
// the draft is put back so the author can retry.
func (e *Engine) FinishDraft(ctx context.Context, author string) (models.Poll, error) {
	e.resetMu.RLock()
	defer e.resetMu.RUnlock()
	l := e.authorLock(author)
	l.Lock()
	defer l.Unlock()

	draft, err := e.drafts.Finalize(ctx, author)
	if err != nil {
		return models.Poll{}, err
	}

	poll, err := e.polls.Publish(ctx, draft)
	if err != nil {
		if rerr := e.drafts.Restore(ctx, draft); rerr != nil {
			e.logger.Error("failed to restore draft", "author", author, "error", rerr)
		}
		return models.Poll{}, fmt.Errorf("failed to publish poll: %w", err)
	}

	e.logger.Info("poll published", "poll_id", poll.ID, "author", author, "options", len(poll.Options))
	e.notify(ctx, models.EventPollPublished, &poll)
	return poll, nil
}

// ListPolls returns every published poll in publication order.
func (e *Engine) ListPolls(ctx context.Context) ([]models.PollSummary, error) {
	e.resetMu.RLock()
	defer e.resetMu.RUnlock()
	return e.polls.List(ctx)
}

func (e *Engine) Poll(ctx context.Context, id int) (models.Poll, error) {
	e.resetMu.RLock()
	defer e.resetMu.RUnlock()
	return e.polls.Get(ctx, id)
}

// ShowPoll renders a poll without scores.
func (e *Engine) ShowPoll(ctx context.Context, id int) ([]string, error) {
	poll, err := e.Poll(ctx, id)
	if err != nil {
		return nil, err
	}
	return FormatPoll(poll, false), nil
}

// ResultsForPoll renders a poll with its scores.
func (e *Engine) ResultsForPoll(ctx context.Context, id int) ([]string, error) {
	poll, err := e.Poll(ctx, id)
	if err != nil {
		return nil, err
	}
	return FormatPoll(poll, true), nil
}

// RandomPoll renders a uniformly chosen poll without scores.
func (e *Engine) RandomPoll(ctx context.Context) ([]string, error) {
	e.resetMu.RLock()
	poll, err := e.polls.RandomPoll(ctx)
	e.resetMu.RUnlock()
	if err != nil {
		return nil, err
	}
	return FormatPoll(poll, false), nil
}

// CastVote records one vote by voter for the option labelled label on poll id.
//
// Lookup, range check, duplicate check, score increment and vote record run
// under the poll's lock. When the vote cannot be recorded after the score was
// incremented the increment is undone.
func (e *Engine) CastVote(ctx context.Context, voter string, id int, label string) (VoteReceipt, error) {
	e.resetMu.RLock()
	defer e.resetMu.RUnlock()
	l := e.pollLock(id)
	l.Lock()
	defer l.Unlock()

	poll, err := e.polls.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPollNotFound) {
			e.reject(id, ReasonPollNotFound)
		}
		return VoteReceipt{}, err
	}

	idx, ok := ParseLabel(label)
	if !ok || idx >= len(poll.Options) {
		e.reject(id, ReasonOptionNotFound)
		return VoteReceipt{}, ErrOptionNotFound
	}

	voted, err := e.votes.HasVoted(ctx, voter, id)
	if err != nil {
		return VoteReceipt{}, err
	}
	if voted {
		e.reject(id, ReasonAlreadyVoted)
		return VoteReceipt{}, ErrAlreadyVoted
	}

	updated, err := e.polls.IncrementScore(ctx, id, idx)
	if err != nil {
		return VoteReceipt{}, err
	}
	if err := e.votes.RecordVote(ctx, voter, id); err != nil {
		if _, rerr := e.polls.DecrementScore(ctx, id, idx); rerr != nil {
			e.logger.Error("failed to roll back score", "poll_id", id, "error", rerr)
		}
		if errors.Is(err, ErrAlreadyVoted) {
			e.reject(id, ReasonAlreadyVoted)
		}
		return VoteReceipt{}, err
	}

	e.logger.Info("vote cast", "poll_id", id)
	e.notify(ctx, models.EventVoteCast, &updated)
	return VoteReceipt{
		PollID:   id,
		Question: updated.Question,
		Option:   updated.Options[idx].Name,
	}, nil
}

// ResetAll clears drafts, polls and votes and rewinds the id counter. When
// the engine owns its stores every record goes in one delete; otherwise the
// stores are reset in turn and a failure leaves the later ones untouched.
func (e *Engine) ResetAll(ctx context.Context) error {
	e.resetMu.Lock()
	defer e.resetMu.Unlock()

	if e.records != nil {
		err := e.records.Delete(ctx,
			models.KeyPollsInProgress,
			models.KeyPolls,
			models.KeyPollsMaxID,
			models.KeyPollUserVotes,
		)
		if err != nil {
			return fmt.Errorf("failed to flush poll data: %w", err)
		}
	} else if err := e.resetStores(ctx); err != nil {
		return err
	}

	e.logger.Info("poll data flushed")
	e.notify(ctx, models.EventPollsReset, nil)
	return nil
}

// resetStores clears polls before the ledger, so a partial flush never lets
// anyone vote twice on a poll that survived it.
func (e *Engine) resetStores(ctx context.Context) error {
	steps := []struct {
		name  string
		reset func(context.Context) error
	}{
		{"polls", e.polls.Reset},
		{"votes", e.votes.Reset},
		{"drafts", e.drafts.Reset},
	}

	cleared := make([]string, 0, len(steps))
	for _, step := range steps {
		if err := step.reset(ctx); err != nil {
			e.logger.Error("poll data flush incomplete",
				"cleared", cleared,
				"failed", step.name,
				"error", err,
			)
			return fmt.Errorf("failed to reset %s: %w", step.name, err)
		}
		cleared = append(cleared, step.name)
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, eventType string, poll *models.Poll) {
	ev := models.Event{Type: eventType, OccurredAt: e.now().UTC()}
	if poll != nil {
		ev.PollID = poll.ID
	}
	for _, l := range e.listeners {
		ev := ev
		if poll != nil {
			snapshot := poll.Clone()
			ev.Poll = &snapshot
		}
		l.OnEvent(ctx, ev)
	}
}

func (e *Engine) reject(id int, reason string) {
	e.logger.Warn("vote rejected", "poll_id", id, "reason", reason)
	for _, l := range e.listeners {
		if rl, ok := l.(RejectionListener); ok {
			rl.OnVoteRejected(reason)
		}
	}
}
