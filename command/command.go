// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package command turns free chat text into typed poll commands.
package command

import (
	"regexp"
	"strconv"
)

type Kind int

const (
	Create Kind = iota + 1
	AddOption
	Preview
	Done
	Random
	Vote
	List
	Show
	Results
	FlushAll
)

var kindNames = map[Kind]string{
	Create:    "create",
	AddOption: "add_option",
	Preview:   "preview",
	Done:      "done",
	Random:    "random",
	Vote:      "vote",
	List:      "list",
	Show:      "show",
	Results:   "results",
	FlushAll:  "flushall",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is a parsed request. Only the fields its Kind uses are set.
type Command struct {
	Kind   Kind
	Text   string // question for Create, option name for AddOption
	PollID int    // Vote, Show, Results
	Label  string // Vote
}

// PrivateOnly reports whether the command is honoured only in a direct
// conversation with the bot.
func (c Command) PrivateOnly() bool {
	switch c.Kind {
	case List, Show, Results:
		return false
	default:
		return true
	}
}

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// Patterns are matched anywhere in the message, in this order. Quoted text
// runs to the last quote on the line.
var patterns = []pattern{
	{Create, regexp.MustCompile(`(?i)poll create "(.+)"`)},
	{AddOption, regexp.MustCompile(`(?i)poll add option "(.+)"`)},
	{Preview, regexp.MustCompile(`(?i)poll preview`)},
	{Done, regexp.MustCompile(`(?i)poll done`)},
	{List, regexp.MustCompile(`(?i)poll list`)},
	{Show, regexp.MustCompile(`(?i)poll show (\d+)`)},
	{Vote, regexp.MustCompile(`(?i)poll vote (\d+) ([a-z])`)},
	{Results, regexp.MustCompile(`(?i)poll results (\d+)`)},
	{Random, regexp.MustCompile(`(?i)poll random`)},
	{FlushAll, regexp.MustCompile(`(?i)poll flushall`)},
}

// Parse matches text against the command grammar. Text that matches nothing
// yields false and should be ignored.
func Parse(text string) (Command, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		cmd := Command{Kind: p.kind}
		switch p.kind {
		case Create, AddOption:
			cmd.Text = m[1]
		case Show, Results:
			id, ok := parseID(m[1])
			if !ok {
				continue
			}
			cmd.PollID = id
		case Vote:
			id, ok := parseID(m[1])
			if !ok {
				continue
			}
			cmd.PollID = id
			cmd.Label = m[2]
		}
		return cmd, true
	}
	return Command{}, false
}

func parseID(s string) (int, bool) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return id, true
}
