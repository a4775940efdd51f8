package service

import "errors"

var (
	// ErrNotFound is returned when a referenced interview does not exist
	ErrNotFound = errors.New("interview not found")

	// ErrActiveInterview is returned when the candidate already has an
	// interview in a pre-completion status
	ErrActiveInterview = errors.New("candidate already has an active interview")

	// ErrConsentRequired is returned when questioning is attempted before
	// the compliance gate has been passed
	ErrConsentRequired = errors.New("consent has not been granted")

	// ErrInterviewOver is returned when a turn is attempted on a finished
	// interview
	ErrInterviewOver = errors.New("interview already finished")
)
