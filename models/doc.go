// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, event, request, and response types.

# Domain Types

  - Poll: a published poll with an immutable id
  - DraftPoll: an author's in-progress poll (no id)
  - Option: option name and score; its position is its identity
  - PollSummary: id and question, used for listings

Poll and DraftPoll provide Clone so stores never hand out shared option
slices.

# Backing Store Keys

The four persisted records:

	KeyPolls           = "polls"
	KeyPollsInProgress = "polls_in_progress"
	KeyPollsMaxID      = "polls_max_id"
	KeyPollUserVotes   = "poll_user_votes"

# Events

Event is emitted after a committed change:

	EventPollPublished = "poll.published"
	EventVoteCast      = "vote.cast"
	EventPollsReset    = "polls.reset"

Events carry the poll snapshot but never the voter.

# Request and Response Types

  - ChatMessageRequest: user, room, text
  - ChatMessageResponse: replies
  - PollListResponse: polls
  - PollView / OptionView: JSON rendering of a poll
  - ErrorResponse: error, message
*/
package models
