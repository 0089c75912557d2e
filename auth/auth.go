// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// SessionHeader carries the fill-in session token on every session request.
const SessionHeader = "X-Session-Token"

// sessionTokenBytes is the entropy of a session token (192 bits).
const sessionTokenBytes = 24

var (
	ErrMissingToken = errors.New("missing session token")
	ErrInvalidToken = errors.New("invalid token format")
)

// GenerateSessionToken creates a random secure token for a fill-in session.
func GenerateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// ValidateSessionToken checks that a token has the shape produced by
// GenerateSessionToken. It says nothing about whether the session exists.
func ValidateSessionToken(token string) error {
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(decoded) != sessionTokenBytes {
		return ErrInvalidToken
	}
	return nil
}

// SessionToken extracts and validates the session token of a request.
func SessionToken(r *http.Request) (string, error) {
	token := strings.TrimSpace(r.Header.Get(SessionHeader))
	if token == "" {
		return "", ErrMissingToken
	}
	if err := ValidateSessionToken(token); err != nil {
		return "", err
	}
	return token, nil
}
