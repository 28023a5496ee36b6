// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/danielhkuo/secret-ballot/ballot"
	"github.com/danielhkuo/secret-ballot/command"
)

// Reply wording shown to chat users.
const (
	msgNoDraft           = "You currently have no polls in progress. To create a new one, say `poll create \"[question]\"` (question in quotation marks)."
	msgDraftConflict     = "You already have a poll in progress. Say `poll add option \"[option]\"` (option in quotation marks) to add an option to your current in-progress poll. Say `poll done` to finish and activate the poll."
	msgCreatedFmt        = "Created poll \"%s\". Say `poll add option \"[option]\"` (option in quotation marks) to add an option to your current in-progress poll. Say `poll done` to finish and activate the poll."
	msgOptionAddedFmt    = "You added option \"%s\" to poll \"%s\". Add another option, or say `poll preview` or `poll done`."
	msgTooManyOptions    = "Your poll already has 26 options, the most a poll can have. Say `poll preview` or `poll done`."
	msgEmptyText         = "That text is empty. Put some words between the quotation marks."
	msgSavedFmt          = "Poll \"%s\" saved."
	msgCurrentPolls      = "Current polls:"
	msgNoPolls           = "No current polls."
	msgShowHint          = "To show options for a single poll, say `poll show [number]`."
	msgPollNotFound      = "Sorry, I couldn't find that poll."
	msgAlreadyVoted      = "You've already voted on this poll."
	msgOptionNotFoundFmt = "Sorry, I couldn't find that option for poll %d."
	msgVotedFmt          = "You voted for %s on poll \"%s\""
	msgResultsFor        = "Results for:"
	msgNoPollsYet        = "There are no polls yet."
	msgFlushed           = "Poll data flushed."
	msgVoteHint          = "To vote on this poll, private message me `poll vote [poll number] [option letter]`, e.g., `poll vote 1 a`. To see results for this poll, say `poll results [poll number]`."
	msgInternal          = "Sorry, something went wrong. Please try again."
)

// Message is one incoming chat line. A message is private when it was sent
// in the sender's own room.
type Message struct {
	User string
	Room string
	Text string
}

func (m Message) Private() bool {
	return m.Room == m.User
}

// Dispatcher routes parsed commands to the engine and renders replies.
type Dispatcher struct {
	engine *ballot.Engine
	logger *slog.Logger
}

func NewDispatcher(engine *ballot.Engine, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{engine: engine, logger: logger}
}

// Handle returns the reply lines for msg. Text outside the grammar, and
// private-only commands sent to a shared room, get no reply.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) []string {
	cmd, ok := command.Parse(msg.Text)
	if !ok {
		return nil
	}
	if cmd.PrivateOnly() && !msg.Private() {
		d.logger.Debug("ignored private command in shared room", "command", cmd.Kind.String(), "room", msg.Room)
		return nil
	}

	replies, err := d.dispatch(ctx, msg.User, cmd)
	if err != nil {
		return d.renderError(cmd, err)
	}
	return replies
}

func (d *Dispatcher) dispatch(ctx context.Context, user string, cmd command.Command) ([]string, error) {
	switch cmd.Kind {
	case command.Create:
		if err := d.engine.CreateDraft(ctx, user, cmd.Text); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf(msgCreatedFmt, cmd.Text)}, nil

	case command.AddOption:
		draft, err := d.engine.AddOption(ctx, user, cmd.Text)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf(msgOptionAddedFmt, cmd.Text, draft.Question)}, nil

	case command.Preview:
		draft, err := d.engine.PreviewDraft(ctx, user)
		if err != nil {
			return nil, err
		}
		return ballot.FormatDraft(draft), nil

	case command.Done:
		poll, err := d.engine.FinishDraft(ctx, user)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf(msgSavedFmt, poll.Question)}, nil

	case command.List:
		polls, err := d.engine.ListPolls(ctx)
		if err != nil {
			return nil, err
		}
		if len(polls) == 0 {
			return []string{msgCurrentPolls, msgNoPolls}, nil
		}
		replies := []string{msgCurrentPolls}
		for _, p := range polls {
			replies = append(replies, strconv.Itoa(p.ID)+". "+p.Question)
		}
		return append(replies, msgShowHint), nil

	case command.Show:
		lines, err := d.engine.ShowPoll(ctx, cmd.PollID)
		if err != nil {
			return nil, err
		}
		return append(lines, msgVoteHint), nil

	case command.Results:
		lines, err := d.engine.ResultsForPoll(ctx, cmd.PollID)
		if err != nil {
			return nil, err
		}
		replies := append([]string{msgResultsFor}, lines...)
		return append(replies, msgVoteHint), nil

	case command.Random:
		lines, err := d.engine.RandomPoll(ctx)
		if err != nil {
			return nil, err
		}
		return append(lines, msgVoteHint), nil

	case command.Vote:
		receipt, err := d.engine.CastVote(ctx, user, cmd.PollID, cmd.Label)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf(msgVotedFmt, receipt.Option, receipt.Question)}, nil

	case command.FlushAll:
		if err := d.engine.ResetAll(ctx); err != nil {
			return nil, err
		}
		d.logger.Warn("poll data flushed", "user", user)
		return []string{msgFlushed}, nil
	}
	return nil, nil
}

func (d *Dispatcher) renderError(cmd command.Command, err error) []string {
	switch {
	case errors.Is(err, ballot.ErrNoDraft):
		return []string{msgNoDraft}
	case errors.Is(err, ballot.ErrDraftConflict):
		return []string{msgDraftConflict}
	case errors.Is(err, ballot.ErrTooManyOptions):
		return []string{msgTooManyOptions}
	case errors.Is(err, ballot.ErrEmptyText):
		return []string{msgEmptyText}
	case errors.Is(err, ballot.ErrPollNotFound):
		return []string{msgPollNotFound}
	case errors.Is(err, ballot.ErrAlreadyVoted):
		return []string{msgAlreadyVoted}
	case errors.Is(err, ballot.ErrOptionNotFound):
		return []string{fmt.Sprintf(msgOptionNotFoundFmt, cmd.PollID)}
	case errors.Is(err, ballot.ErrEmptyRepository):
		return []string{msgNoPollsYet}
	default:
		d.logger.Error("command failed", "command", cmd.Kind.String(), "error", err)
		return []string{msgInternal}
	}
}
