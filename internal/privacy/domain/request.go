package domain

import (
	"time"

	"github.com/google/uuid"
)

// Request represents a privacy request for the personal data tied to an email
// address. The email is stored in its punycode-normalized form and the
// confirmation token is stored only as an argon2id hash; the plaintext token
// exists transiently in the outbound confirmation mail.
type Request struct {
	ID          uuid.UUID
	Email       string
	RequestType RequestType
	// UserID is set only when the requester was authenticated; anonymous
	// requests carry no identity.
	UserID              *uuid.UUID
	Status              Status
	ConfirmToken        string
	ConfirmTokenCreated time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsPending reports whether the request still blocks a new request for the
// same email and type.
func (r *Request) IsPending() bool {
	for _, s := range PendingStatuses() {
		if r.Status == s {
			return true
		}
	}
	return false
}

// ConfirmTokenExpired reports whether the confirmation token is older than
// the given time-to-live. All time comparisons use UTC.
func (r *Request) ConfirmTokenExpired(ttl time.Duration) bool {
	return time.Now().UTC().After(r.ConfirmTokenCreated.UTC().Add(ttl))
}
