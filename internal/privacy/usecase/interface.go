package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/privacy/internal/privacy/domain"
)

// UseCase defines the interface for privacy request business logic operations.
type UseCase interface {
	// CreateRequest validates and deduplicates a submitted privacy request,
	// persists it with a hashed confirmation token, and mails a confirmation link.
	CreateRequest(ctx context.Context, input CreateRequestInput) (*domain.Request, error)
	// ConfirmRequest verifies a mailed confirmation token and transitions the
	// matching request from pending to confirmed.
	ConfirmRequest(ctx context.Context, input ConfirmRequestInput) (*domain.Request, error)
	// ListRequests retrieves privacy requests for the admin API.
	ListRequests(ctx context.Context, status *domain.Status, limit, offset int) ([]*domain.Request, error)
	// PurgeExpired removes unconfirmed requests whose confirmation token has expired.
	PurgeExpired(ctx context.Context) (int64, error)
}

// RequestRepository interface defines privacy request repository operations.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.Request) error
	CountPending(ctx context.Context, email string, requestType domain.RequestType, userID *uuid.UUID) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error)
	ListPendingByEmail(ctx context.Context, email string) ([]*domain.Request, error)
	List(ctx context.Context, status *domain.Status, limit, offset int) ([]*domain.Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
