// Package domain defines the core privacy request domain entities and types.
// A privacy request records a subject's wish to export or remove the personal
// data associated with an email address, pending confirmation by mail.
package domain

import (
	"errors"
)

// RequestType defines the kind of privacy request.
type RequestType string

const (
	// RequestTypeExport asks for a copy of the subject's personal data.
	RequestTypeExport RequestType = "export"
	// RequestTypeRemove asks for the subject's personal data to be removed.
	RequestTypeRemove RequestType = "remove"
)

// Validate checks if the request type is one of the supported values.
func (r RequestType) Validate() error {
	switch r {
	case RequestTypeExport, RequestTypeRemove:
		return nil
	default:
		return errors.New("invalid request type")
	}
}

// String returns the string representation of the request type.
func (r RequestType) String() string {
	return string(r)
}

// Status defines the lifecycle state of a privacy request.
type Status string

const (
	// StatusPending means the request awaits confirmation by the subject.
	StatusPending Status = "pending"
	// StatusConfirmed means the subject confirmed the request via the mailed token.
	StatusConfirmed Status = "confirmed"
	// StatusCompleted means the request has been fulfilled.
	StatusCompleted Status = "completed"
	// StatusInvalid means the request was rejected or expired.
	StatusInvalid Status = "invalid"
)

// Validate checks if the status is one of the supported values.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusInvalid:
		return nil
	default:
		return errors.New("invalid status")
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// PendingStatuses returns the statuses that block a new request for the same
// email and request type. A request stays blocking until it reaches a
// terminal state.
func PendingStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed}
}
