package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyQuery indicates an empty or whitespace-only query
	ErrEmptyQuery = errors.New("empty query")
	// ErrQueryInFlight indicates a submission is already in progress for the session
	ErrQueryInFlight = errors.New("query already in flight")
	// ErrBadShape indicates a payload that does not match its tag's schema
	ErrBadShape = errors.New("malformed payload")
	// ErrCaptureBusy indicates an audio session is already active
	ErrCaptureBusy = errors.New("audio capture already active")
	// ErrMicrophoneDenied indicates microphone access was denied
	ErrMicrophoneDenied = errors.New("microphone access denied")
	// ErrFeedbackRecorded indicates feedback was already recorded for a message
	ErrFeedbackRecorded = errors.New("feedback already recorded")
)
