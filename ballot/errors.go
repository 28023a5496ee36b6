// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import "errors"

// Expected, user-facing conditions. None of them leaves partial state behind.
var (
	ErrDraftConflict   = errors.New("a poll is already in progress")
	ErrNoDraft         = errors.New("no poll in progress")
	ErrPollNotFound    = errors.New("poll not found")
	ErrOptionNotFound  = errors.New("option not found")
	ErrAlreadyVoted    = errors.New("already voted on this poll")
	ErrEmptyRepository = errors.New("no polls have been published")
	ErrTooManyOptions  = errors.New("poll already has the maximum number of options")
	ErrEmptyText       = errors.New("text must not be empty")
)
