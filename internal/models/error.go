package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrForbidden      = errors.New("forbidden")

	// Authentication errors, surfaced as distinct kinds so the UI can react
	// differently. Only the first three count toward the failed-attempt
	// tracker; the two lock errors are terminal for the attempt.
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrWrongCredential    = errors.New("wrong credential")
	ErrRoleMismatch       = errors.New("role mismatch")
	ErrAccountLocked      = errors.New("account locked by administrator")
	ErrTemporarilyLimited = errors.New("too many failed attempts, try again later")

	// Alert lifecycle errors
	ErrAlreadyResolved = errors.New("alert already resolved")
)
