// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the secret ballot bot.

The bot lets chat users draft polls in private, publish them, and vote
secretly. Each user votes at most once per poll and only aggregate scores are
ever shown.

# Starting the Server

Configuration comes from flags, environment variables, or a .env file in the
working directory:

	STORE_TYPE=sqlite DATABASE_URL=file:ballot.db go run .

Or with flags:

	go run . -p 3318 -s postgres -d "postgres://..."

# Configuration

  - PORT (-p): Server port (default: 3318)
  - STORE_TYPE (-s): memory, sqlite, postgres or redis (default: memory)
  - DATABASE_URL (-d): sqlite or postgres connection string
  - REDIS_URL (-r): Redis URL for the redis store
  - KAFKA_BROKERS, KAFKA_TOPIC: publish poll events when brokers are set
  - WEBHOOK_SECRET: HMAC secret for the X-Signature header on /messages
  - RATE_LIMIT_PER_MINUTE: per user and per IP budget, 0 disables
  - LOG_LEVEL (-log-level): debug, info, warn or error

# Architecture

  - command: chat grammar parsing
  - chat: command dispatch and reply wording
  - ballot: drafts, published polls, the vote ledger and the engine
  - kvstore: memory, SQL and Redis backing stores
  - db: SQL connection and schema setup
  - handlers, router, middleware: HTTP surface
  - pubsub: websocket fan-out of live results
  - events: Kafka event publishing
  - metrics: Prometheus counters
  - auth: webhook signatures and ids
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
