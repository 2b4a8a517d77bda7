package repository

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/allisson/privacy/internal/privacy/domain"
)

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRequest scans one privacy request row. The user id column is nullable
// for anonymous requests.
func scanRequest(s rowScanner) (*domain.Request, error) {
	var (
		request domain.Request
		userID  uuid.NullUUID
	)

	err := s.Scan(
		&request.ID,
		&request.Email,
		&request.RequestType,
		&userID,
		&request.Status,
		&request.ConfirmToken,
		&request.ConfirmTokenCreated,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		request.UserID = &userID.UUID
	}

	return &request, nil
}

// collectRequests drains rows into a slice of privacy requests.
func collectRequests(rows *sql.Rows) ([]*domain.Request, error) {
	var requests []*domain.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// pendingStatusArray returns the pending-like statuses as a PostgreSQL array
// parameter.
func pendingStatusArray() any {
	statuses := domain.PendingStatuses()
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = s.String()
	}
	return pq.Array(values)
}

// pendingStatusArgs returns the pending-like statuses as positional arguments
// for drivers without array parameter support.
func pendingStatusArgs() []any {
	statuses := domain.PendingStatuses()
	values := make([]any, len(statuses))
	for i, s := range statuses {
		values[i] = s.String()
	}
	return values
}
