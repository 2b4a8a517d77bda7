package usecase

import (
	"context"
	"time"

	"github.com/allisson/privacy/internal/metrics"
	"github.com/allisson/privacy/internal/privacy/domain"
)

// requestUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type requestUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewRequestUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewRequestUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &requestUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// CreateRequest records metrics for request creation operations.
func (u *requestUseCaseWithMetrics) CreateRequest(
	ctx context.Context,
	input CreateRequestInput,
) (*domain.Request, error) {
	start := time.Now()
	request, err := u.next.CreateRequest(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "privacy", "request_create", status)
	u.metrics.RecordDuration(ctx, "privacy", "request_create", time.Since(start), status)

	return request, err
}

// ConfirmRequest records metrics for request confirmation operations.
func (u *requestUseCaseWithMetrics) ConfirmRequest(
	ctx context.Context,
	input ConfirmRequestInput,
) (*domain.Request, error) {
	start := time.Now()
	request, err := u.next.ConfirmRequest(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "privacy", "request_confirm", status)
	u.metrics.RecordDuration(ctx, "privacy", "request_confirm", time.Since(start), status)

	return request, err
}

// ListRequests records metrics for admin listing operations.
func (u *requestUseCaseWithMetrics) ListRequests(
	ctx context.Context,
	statusFilter *domain.Status,
	limit, offset int,
) ([]*domain.Request, error) {
	start := time.Now()
	requests, err := u.next.ListRequests(ctx, statusFilter, limit, offset)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "privacy", "request_list", status)
	u.metrics.RecordDuration(ctx, "privacy", "request_list", time.Since(start), status)

	return requests, err
}

// PurgeExpired records metrics for purge operations.
func (u *requestUseCaseWithMetrics) PurgeExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	removed, err := u.next.PurgeExpired(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "privacy", "request_purge", status)
	u.metrics.RecordDuration(ctx, "privacy", "request_purge", time.Since(start), status)

	return removed, err
}
