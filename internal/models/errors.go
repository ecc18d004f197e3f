package models

import "errors"

// Error kinds returned by the tracker, auth and store layers. Callers test
// for them with errors.Is; the HTTP layer maps each to a status code.
var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrConflictingActiveSprint = errors.New("project already has an active sprint")
	ErrOutOfOrderStart         = errors.New("an earlier sprint is still in planning")
	ErrMissingProject          = errors.New("project does not exist")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrStorageFailure          = errors.New("storage failure")

	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrUnauthorized       = errors.New("unauthorized")
)
