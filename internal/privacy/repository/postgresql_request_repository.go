// Package repository provides data persistence implementations for privacy
// request entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/privacy/internal/database"
	"github.com/allisson/privacy/internal/privacy/domain"

	apperrors "github.com/allisson/privacy/internal/errors"
)

// PostgreSQLRequestRepository handles privacy request persistence for PostgreSQL.
type PostgreSQLRequestRepository struct {
	db *sql.DB
}

// NewPostgreSQLRequestRepository creates a new PostgreSQLRequestRepository.
func NewPostgreSQLRequestRepository(db *sql.DB) *PostgreSQLRequestRepository {
	return &PostgreSQLRequestRepository{
		db: db,
	}
}

// Create inserts a new privacy request. A unique violation on the partial
// pending index means another request won the check-then-insert race and is
// reported as an already-pending conflict.
func (r *PostgreSQLRequestRepository) Create(ctx context.Context, request *domain.Request) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO privacy_requests
			  (id, email, request_type, user_id, status, confirm_token, confirm_token_created_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		request.ID,
		request.Email,
		request.RequestType,
		request.UserID,
		request.Status,
		request.ConfirmToken,
		request.ConfirmTokenCreated,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrRequestAlreadyPending
		}
		return apperrors.Wrap(err, "failed to create privacy request")
	}
	return nil
}

// CountPending counts open requests for the normalized email and request
// type, additionally filtered by user when the requester was authenticated.
func (r *PostgreSQLRequestRepository) CountPending(
	ctx context.Context,
	email string,
	requestType domain.RequestType,
	userID *uuid.UUID,
) (int, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(id) FROM privacy_requests
			  WHERE email = $1 AND request_type = $2 AND status = ANY($3)`
	args := []any{email, requestType, pendingStatusArray()}

	if userID != nil {
		query += ` AND user_id = $4`
		args = append(args, *userID)
	}

	var count int
	if err := querier.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count pending privacy requests")
	}

	return count, nil
}

// GetByID retrieves a privacy request by ID.
func (r *PostgreSQLRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, email, request_type, user_id, status, confirm_token, confirm_token_created_at, created_at, updated_at
			  FROM privacy_requests WHERE id = $1`

	request, err := scanRequest(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get privacy request by id")
	}

	return request, nil
}

// ListPendingByEmail retrieves the unconfirmed requests for the normalized
// email, used to match a submitted confirmation token against stored hashes.
func (r *PostgreSQLRequestRepository) ListPendingByEmail(
	ctx context.Context,
	email string,
) ([]*domain.Request, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, email, request_type, user_id, status, confirm_token, confirm_token_created_at, created_at, updated_at
			  FROM privacy_requests WHERE email = $1 AND status = $2 ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query, email, domain.StatusPending)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pending privacy requests")
	}
	defer rows.Close()

	return collectRequests(rows)
}

// List retrieves privacy requests ordered by creation time, optionally
// filtered by status.
func (r *PostgreSQLRequestRepository) List(
	ctx context.Context,
	status *domain.Status,
	limit, offset int,
) ([]*domain.Request, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, email, request_type, user_id, status, confirm_token, confirm_token_created_at, created_at, updated_at
			  FROM privacy_requests`
	args := []any{}

	if status != nil {
		query += ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, *status, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list privacy requests")
	}
	defer rows.Close()

	return collectRequests(rows)
}

// UpdateStatus transitions a privacy request to a new status.
func (r *PostgreSQLRequestRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.Status,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE privacy_requests SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, status, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update privacy request status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if affected == 0 {
		return domain.ErrRequestNotFound
	}

	return nil
}

// Delete removes a privacy request. Used to compensate a saved request whose
// confirmation mail could not be sent.
func (r *PostgreSQLRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM privacy_requests WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete privacy request")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if affected == 0 {
		return domain.ErrRequestNotFound
	}

	return nil
}

// DeleteExpired removes unconfirmed requests whose confirmation token was
// created before the cutoff. Returns the number of removed requests.
func (r *PostgreSQLRequestRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM privacy_requests WHERE status = $1 AND confirm_token_created_at < $2`

	result, err := querier.ExecContext(ctx, query, domain.StatusPending, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired privacy requests")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}

	return affected, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
