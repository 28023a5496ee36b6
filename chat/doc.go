// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package chat answers chat messages that contain poll commands.
//
// Commands that change state or reveal a draft (create, add option, preview,
// done, random, vote, flushall) are only honoured in a private conversation,
// that is when the room name equals the sender's name. list, show and
// results work anywhere.
package chat
