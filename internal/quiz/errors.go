package quiz

import "errors"

var (
	// ErrValidation marks add-word input that is blank after trimming.
	ErrValidation = errors.New("english and native text are both required")

	// ErrProtocol marks an answer that arrived with no pending question.
	ErrProtocol = errors.New("no question is waiting for an answer")

	// ErrUnrecognized is returned by ParseText for text that maps to no intent.
	ErrUnrecognized = errors.New("unrecognized message")

	// ErrHelp is returned by ParseText when the user asks for help.
	ErrHelp = errors.New("help requested")

	// ErrNoIdentity is returned by Dispatch for an event without an external id.
	ErrNoIdentity = errors.New("event has no external id")
)

// User-facing failure reasons.
const (
	reasonStorage     = "Something went wrong. Please try again later."
	reasonInvalidPair = "Send the word as: native = english, or /add english native."
	reasonAddFailed   = "Could not add the word. Please try again later."
)
