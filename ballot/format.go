// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"fmt"
	"strconv"

	"github.com/danielhkuo/secret-ballot/models"
)

// FormatPoll renders a published poll as display lines: a header, the
// "options:" marker, then one labelled line per option in order.
func FormatPoll(poll models.Poll, showScores bool) []string {
	lines := []string{
		fmt.Sprintf("%d. %s (created by %s)", poll.ID, poll.Question, poll.Author),
		"options:",
	}
	return append(lines, FormatOptions(poll.Options, showScores)...)
}

func FormatOptions(options []models.Option, showScores bool) []string {
	lines := make([]string, 0, len(options))
	for i, opt := range options {
		line := Label(i) + ". " + opt.Name
		if showScores {
			line += " (" + strconv.Itoa(opt.Score) + ")"
		}
		lines = append(lines, line)
	}
	return lines
}

// FormatDraft renders an unpublished poll. Drafts have no id and no scores.
func FormatDraft(draft models.DraftPoll) []string {
	lines := []string{
		fmt.Sprintf("%s (created by %s)", draft.Question, draft.Author),
		"options:",
	}
	if len(draft.Options) == 0 {
		return append(lines, "No options yet.")
	}
	return append(lines, FormatOptions(draft.Options, false)...)
}

// View builds the JSON view of a poll. Scores are included only when asked.
func View(poll models.Poll, showScores bool) models.PollView {
	view := models.PollView{
		ID:       poll.ID,
		Question: poll.Question,
		Author:   poll.Author,
		Options:  make([]models.OptionView, 0, len(poll.Options)),
	}
	for i, opt := range poll.Options {
		ov := models.OptionView{Label: Label(i), Name: opt.Name}
		if showScores {
			score := opt.Score
			ov.Score = &score
		}
		view.Options = append(view.Options, ov)
	}
	return view
}
