package domain

import "errors"

var (
	// ErrInvalidIdentity is returned when the email fails the domain policy.
	ErrInvalidIdentity = errors.New("identity does not match the allowed email domain")
	// ErrAlreadyCompleted is returned when the identity already finished an attempt.
	ErrAlreadyCompleted = errors.New("identity already completed the exam")
	// ErrSessionNotFound is returned when a session id has no stored attempt.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionFinished is returned for operations on an already-finished session.
	ErrSessionFinished = errors.New("session already finished")
	// ErrQuestionNotFound indicates a submitted question id is not in the catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCatalogNotFound indicates the question catalog could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
)
