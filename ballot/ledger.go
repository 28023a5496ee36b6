// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"fmt"
	"slices"

	"github.com/danielhkuo/secret-ballot/kvstore"
	"github.com/danielhkuo/secret-ballot/models"
)

// Ledger keeps the poll_user_votes record: voter -> ids of polls voted on.
// Only participation is recorded, never the chosen option. RecordVote checks
// and records in one kvstore.Store.Update, so a voter is recorded at most
// once per poll even across engines sharing the store.
type Ledger struct {
	kv kvstore.Store
}

func NewLedger(kv kvstore.Store) *Ledger {
	return &Ledger{kv: kv}
}

func (l *Ledger) HasVoted(ctx context.Context, voter string, id int) (bool, error) {
	votes := make(map[string][]int)
	if _, err := l.kv.Get(ctx, models.KeyPollUserVotes, &votes); err != nil {
		return false, fmt.Errorf("failed to load vote ledger: %w", err)
	}
	return slices.Contains(votes[voter], id), nil
}

func (l *Ledger) RecordVote(ctx context.Context, voter string, id int) error {
	var votes map[string][]int
	already := false
	err := l.kv.Update(ctx, models.KeyPollUserVotes, &votes, func(bool) error {
		if votes == nil {
			votes = make(map[string][]int)
		}
		already = slices.Contains(votes[voter], id)
		if already {
			return ErrAlreadyVoted
		}
		votes[voter] = append(votes[voter], id)
		return nil
	})
	if already {
		return ErrAlreadyVoted
	}
	if err != nil {
		return fmt.Errorf("failed to save vote ledger: %w", err)
	}
	return nil
}

func (l *Ledger) Reset(ctx context.Context) error {
	if err := l.kv.Delete(ctx, models.KeyPollUserVotes); err != nil {
		return fmt.Errorf("failed to reset vote ledger: %w", err)
	}
	return nil
}
