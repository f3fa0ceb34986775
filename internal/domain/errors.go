package domain

import "errors"

var (
	// ErrHostUnreachable marks failures where the question service host could not be reached at all.
	ErrHostUnreachable = errors.New("question service host unreachable")
	// ErrUnexpectedStatus is returned when the question service answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected question service status")
	// ErrQuestionNotFound indicates a submitted question ID is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrBlankAnswer is returned when an answer is empty or whitespace only.
	ErrBlankAnswer = errors.New("answer is blank")
)
