// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the secret ballot bot.

# Handler Types

  - ChatHandler: chat platform webhook, one message in, reply lines out
  - PollHandler: read-only JSON views of published polls
  - LiveHandler: websocket stream of results for one poll

Handlers are created via constructor functions that take the engine and
whatever else they need:

	chatHandler := handlers.NewChatHandler(dispatcher, limiter, secret)
	pollHandler := handlers.NewPollHandler(engine)
	liveHandler := handlers.NewLiveHandler(engine, hub)

# Chat Webhook

	POST /messages {"user": "alice", "room": "alice", "text": "poll list"}
	→ 200 {"replies": ["Current polls:", "No current polls."]}

A message is private when room equals user. Text that is not a poll
command gets an empty replies list. When a webhook secret is configured
the body must be signed (see package auth). Each user is rate limited.

# Poll Views

	GET /polls              → {"polls": [{"id": 1, "question": "..."}]}
	GET /polls/{id}         → options without scores
	GET /polls/{id}/results → options with scores

Engine errors map to status codes in mapError: missing polls are 404,
conflicts 409, invalid input 400.

# Live Results

	GET /polls/{id}/live (websocket)

The first message is a "snapshot" of the current results; a "vote.cast"
message follows every vote and "polls.reset" follows a flush. Voter
identities are never sent.
*/
package handlers
