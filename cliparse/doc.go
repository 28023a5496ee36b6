// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadEnvFile seeds the environment from a .env file, then ParseFlags returns
a Config struct with all settings:

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment Variables

	-p          PORT                   Server port (default 3318)
	-s          STORE_TYPE             memory, sqlite, postgres or redis (default memory)
	-d          DATABASE_URL           Database URL (sqlite, postgres)
	-r          REDIS_URL              Redis URL (redis)
	-log-level  LOG_LEVEL              debug, info, warn or error (default info)
	            KAFKA_BROKERS          Comma separated brokers; events are off when empty
	            KAFKA_TOPIC            Event topic (default poll-events)
	            WEBHOOK_SECRET         Require signed webhook bodies when set
	            RATE_LIMIT_PER_MINUTE  Chat commands per user per minute (default 30, 0 disables)

CLI flags take precedence over environment variables, and environment
variables take precedence over the .env file.

# Validation

ParseFlags returns an error if the store type is unknown or its URL is
missing, or if a numeric or log level value does not parse.
*/
package cliparse
