// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides fill-in session tokens.

# Session Tokens

Session tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateSessionToken()

Tokens are URL-safe base64 encoded without padding. A token is returned
when a fill-in session starts and identifies the draft on every later
request through the X-Session-Token header.

# Validation

	token, err := auth.SessionToken(r)

SessionToken returns ErrMissingToken when the header is absent and
ErrInvalidToken when it does not decode to 24 bytes. Whether the session
still exists is up to the store.
*/
package auth
