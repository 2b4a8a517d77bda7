package domain

import (
	"github.com/allisson/privacy/internal/errors"
)

var (
	// ErrRequestNotFound indicates the privacy request was not found.
	ErrRequestNotFound = errors.Wrap(errors.ErrNotFound, "privacy request not found")

	// ErrRequestAlreadyPending indicates an open request already exists for
	// the same email address and request type.
	ErrRequestAlreadyPending = errors.Wrap(errors.ErrConflict, "pending privacy request already open")

	// ErrUnknownRequestType indicates an unsupported request type was provided.
	ErrUnknownRequestType = errors.Wrap(errors.ErrInvalidInput, "unknown privacy request type")

	// ErrDuplicateCheckFailed indicates the lookup for existing requests could
	// not be performed; no new request is created in that case.
	ErrDuplicateCheckFailed = errors.Wrap(errors.ErrUnavailable, "unable to check for existing requests")

	// ErrConfirmTokenInvalid indicates the confirmation token does not match
	// any open request.
	ErrConfirmTokenInvalid = errors.Wrap(errors.ErrInvalidInput, "confirmation token is invalid")

	// ErrConfirmTokenExpired indicates the confirmation token has expired.
	ErrConfirmTokenExpired = errors.Wrap(errors.ErrInvalidInput, "confirmation token has expired")
)
