// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ballot implements secret-ballot polls: per-author drafts, published
// polls with monotonic ids, and one vote per voter per poll.
//
// The Engine owns all state through three stores (Drafts, Polls, Ledger)
// that persist four JSON records in a kvstore.Store:
//
//	polls              published polls in publication order
//	polls_in_progress  author -> draft
//	polls_max_id       last assigned poll id
//	poll_user_votes    voter -> ids of polls voted on
//
// The ledger records only that a voter took part, never which option was
// chosen. Listeners receive events after each committed change.
//
// Every read-modify-write of a record is a single kvstore.Store.Update, so
// several engines, in one process or many, may share a backing store.
// The engine's own locks only order work within a process.
package ballot
