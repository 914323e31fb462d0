package service

import "errors"

// Every error returned by Service wraps exactly one of these.
var (
	// ErrInput is a missing or malformed request field.
	ErrInput = errors.New("invalid input")
	// ErrAuth means logging into the portal failed.
	ErrAuth = errors.New("login failed")
	// ErrCodec means the booking code could not be decoded.
	ErrCodec = errors.New("invalid booking code")
	// ErrUpstream is a network or parse failure against the portal.
	ErrUpstream = errors.New("upstream failure")
)
