// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies chat webhook deliveries and generates identifiers.

# Webhook Signatures

When a webhook secret is configured, the chat platform signs each request
body with HMAC-SHA256 and sends the hex digest in the X-Signature header:

	sig := auth.SignBody(body, secret)
	err := auth.ValidateSignature(body, r.Header.Get(auth.SignatureHeader), secret)

A "sha256=" prefix on the header value is accepted. Comparison is constant
time.

# ID Generation

Random hex IDs for websocket subscribers:

	id, err := auth.GenerateID(8)  // 16 hex characters

# IP Hashing

Client addresses are hashed before they reach the logs:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
