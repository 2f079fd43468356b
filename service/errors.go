package service

import "errors"

var (
	// ErrNoGenerator is returned by New when no generator is configured.
	ErrNoGenerator = errors.New("service: no generator configured")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("service: closed")
)
