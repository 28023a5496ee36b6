// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the secret ballot bot.

# Route Registration

NewRouter builds a chi router over the long-lived services:

	mux := router.NewRouter(router.Deps{Engine: engine, Hub: hub}, cfg)

Every route runs behind request ids, real-ip detection, panic recovery,
request logging and CORS.

# Endpoints

Operations:

	GET /health  - Liveness probe
	GET /metrics - Prometheus metrics

Chat webhook (signed with X-Signature when a secret is configured):

	POST /messages - Run one chat line, returns the bot's replies

The webhook is rate limited per user. Unsigned deliveries are also limited
per client IP.

Read-only poll API (rate limited per client IP):

	GET /polls              - Poll ids and questions
	GET /polls/{id}         - Poll with options, scores hidden
	GET /polls/{id}/results - Poll with scores
	GET /polls/{id}/live    - Websocket stream of results after each vote

The live route is only mounted when a hub is provided.
*/
package router
