// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
)

// CreateRequestRequest contains the parameters for submitting a privacy request.
// The optional UserID ties the request to an authenticated account.
type CreateRequestRequest struct {
	Email       string `json:"email"`
	RequestType string `json:"request_type"`
	UserID      string `json:"user_id,omitempty"`
}

// Validate checks the structural shape of the submission. Semantic validation
// (email format, request type enum) happens in the use case after email
// normalization.
func (r *CreateRequestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.RequestType, validation.Required),
		validation.Field(&r.UserID, validation.When(r.UserID != "", validation.Length(36, 36))),
	)
}

// ConfirmRequestRequest contains the parameters for confirming a privacy request.
type ConfirmRequestRequest struct {
	Email        string `json:"email"`
	ConfirmToken string `json:"confirm_token"`
}

// Validate checks if the confirm request is valid.
func (r *ConfirmRequestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.ConfirmToken, validation.Required),
	)
}
