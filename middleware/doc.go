// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	r.Use(middleware.WithLogging)

Logs method, route pattern, status, request id and duration_ms once the
handler returns.

# CORS Middleware

Allows GET, POST and OPTIONS with the Content-Type and X-Signature headers
so dashboards on other origins can read poll results.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Read and decode request bodies. The raw bytes are kept so a webhook
signature can be checked before decoding:

	raw, err := middleware.ReadBody(w, r) // 413 when middleware.IsTooLarge(err)
	err = middleware.ParseJSON(raw, &req)

# Rate Limiting

RateLimiter keeps a token bucket per key:

	limiter := middleware.NewRateLimiter(30) // per minute
	if !limiter.Allow(user) { ... }

RateLimit applies a limiter keyed by client IP to a route group. A nil
limiter allows everything.

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
