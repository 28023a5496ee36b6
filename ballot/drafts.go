// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"fmt"

	"github.com/danielhkuo/secret-ballot/kvstore"
	"github.com/danielhkuo/secret-ballot/models"
)

// Drafts keeps in-progress polls in the polls_in_progress record, a mapping
// from author to draft. Changes go through kvstore.Store.Update, so engines
// sharing one backing store never overwrite each other's drafts.
type Drafts struct {
	kv kvstore.Store
}

func NewDrafts(kv kvstore.Store) *Drafts {
	return &Drafts{kv: kv}
}

func (d *Drafts) load(ctx context.Context) (map[string]models.DraftPoll, error) {
	drafts := make(map[string]models.DraftPoll)
	if _, err := d.kv.Get(ctx, models.KeyPollsInProgress, &drafts); err != nil {
		return nil, fmt.Errorf("failed to load drafts: %w", err)
	}
	if drafts == nil {
		drafts = make(map[string]models.DraftPoll)
	}
	return drafts, nil
}

// update applies fn to the stored drafts atomically. Errors from fn come
// back unwrapped and leave the record as it was.
func (d *Drafts) update(ctx context.Context, fn func(drafts map[string]models.DraftPoll) error) error {
	var drafts map[string]models.DraftPoll
	var fnErr error
	err := d.kv.Update(ctx, models.KeyPollsInProgress, &drafts, func(bool) error {
		if drafts == nil {
			drafts = make(map[string]models.DraftPoll)
		}
		fnErr = fn(drafts)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("failed to save drafts: %w", err)
	}
	return nil
}

// Create starts a draft for author. An existing draft is left untouched and
// ErrDraftConflict is returned.
func (d *Drafts) Create(ctx context.Context, author, question string) error {
	return d.update(ctx, func(drafts map[string]models.DraftPoll) error {
		if _, ok := drafts[author]; ok {
			return ErrDraftConflict
		}
		drafts[author] = models.DraftPoll{
			Author:   author,
			Question: question,
			Options:  []models.Option{},
		}
		return nil
	})
}

func (d *Drafts) AddOption(ctx context.Context, author, name string) (models.DraftPoll, error) {
	var draft models.DraftPoll
	err := d.update(ctx, func(drafts map[string]models.DraftPoll) error {
		var ok bool
		draft, ok = drafts[author]
		if !ok {
			return ErrNoDraft
		}
		if len(draft.Options) >= MaxOptions {
			return ErrTooManyOptions
		}
		draft.Options = append(draft.Options, models.Option{Name: name, Score: 0})
		drafts[author] = draft
		return nil
	})
	if err != nil {
		return models.DraftPoll{}, err
	}
	return draft.Clone(), nil
}

func (d *Drafts) Preview(ctx context.Context, author string) (models.DraftPoll, error) {
	drafts, err := d.load(ctx)
	if err != nil {
		return models.DraftPoll{}, err
	}
	draft, ok := drafts[author]
	if !ok {
		return models.DraftPoll{}, ErrNoDraft
	}
	return draft.Clone(), nil
}

// Finalize removes and returns author's draft.
func (d *Drafts) Finalize(ctx context.Context, author string) (models.DraftPoll, error) {
	var draft models.DraftPoll
	err := d.update(ctx, func(drafts map[string]models.DraftPoll) error {
		var ok bool
		draft, ok = drafts[author]
		if !ok {
			return ErrNoDraft
		}
		delete(drafts, author)
		return nil
	})
	if err != nil {
		return models.DraftPoll{}, err
	}
	return draft.Clone(), nil
}

func (d *Drafts) Restore(ctx context.Context, draft models.DraftPoll) error {
	return d.update(ctx, func(drafts map[string]models.DraftPoll) error {
		if _, ok := drafts[draft.Author]; ok {
			return ErrDraftConflict
		}
		drafts[draft.Author] = draft.Clone()
		return nil
	})
}

func (d *Drafts) Reset(ctx context.Context) error {
	if err := d.kv.Delete(ctx, models.KeyPollsInProgress); err != nil {
		return fmt.Errorf("failed to reset drafts: %w", err)
	}
	return nil
}
