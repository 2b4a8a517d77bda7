// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	privacyDomain "github.com/allisson/privacy/internal/privacy/domain"
)

// RequestResponse represents a privacy request in API responses.
// The confirmation token hash is never exposed.
type RequestResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	RequestType string    `json:"request_type"`
	UserID      string    `json:"user_id,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapRequestToResponse converts a domain request to an API response.
func MapRequestToResponse(request *privacyDomain.Request) RequestResponse {
	response := RequestResponse{
		ID:          request.ID.String(),
		Email:       request.Email,
		RequestType: request.RequestType.String(),
		Status:      string(request.Status),
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
	}
	if request.UserID != nil {
		response.UserID = request.UserID.String()
	}
	return response
}

// ListRequestsResponse represents a paginated list of privacy requests.
type ListRequestsResponse struct {
	Data []RequestResponse `json:"data"`
}

// MapRequestsToListResponse converts a slice of domain requests to a list response.
func MapRequestsToListResponse(requests []*privacyDomain.Request) ListRequestsResponse {
	data := make([]RequestResponse, 0, len(requests))
	for _, request := range requests {
		data = append(data, MapRequestToResponse(request))
	}

	return ListRequestsResponse{
		Data: data,
	}
}

// PurgeResponse reports how many expired requests were removed.
type PurgeResponse struct {
	Removed int64 `json:"removed"`
}
