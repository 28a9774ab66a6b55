package entity

import "errors"

var (
	// ErrUserNotFound is returned by user lookups that do not implicitly create.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidTimeOfDay is returned for malformed HH:MM strings.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
)
