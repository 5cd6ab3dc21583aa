// Package common contains shared constants and sentinel errors used across
// ChatApp components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Auth errors, surfaced to the user on login/register.
	ErrAuth       = errors.New("authentication failed")
	ErrEmailTaken = errors.New("email already in use")

	// Transport-level errors.
	ErrUnavailable = errors.New("server unavailable")

	// Messaging errors.
	ErrSend = errors.New("message send failed")
)
