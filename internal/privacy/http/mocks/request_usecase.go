// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	privacyDomain "github.com/allisson/privacy/internal/privacy/domain"
	privacyUseCase "github.com/allisson/privacy/internal/privacy/usecase"
)

// MockRequestUseCase is a mock implementation of UseCase for testing.
type MockRequestUseCase struct {
	mock.Mock
}

// CreateRequest mocks the CreateRequest method of UseCase.
func (m *MockRequestUseCase) CreateRequest(
	ctx context.Context,
	input privacyUseCase.CreateRequestInput,
) (*privacyDomain.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*privacyDomain.Request), args.Error(1)
}

// ConfirmRequest mocks the ConfirmRequest method of UseCase.
func (m *MockRequestUseCase) ConfirmRequest(
	ctx context.Context,
	input privacyUseCase.ConfirmRequestInput,
) (*privacyDomain.Request, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*privacyDomain.Request), args.Error(1)
}

// ListRequests mocks the ListRequests method of UseCase.
func (m *MockRequestUseCase) ListRequests(
	ctx context.Context,
	status *privacyDomain.Status,
	limit, offset int,
) ([]*privacyDomain.Request, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*privacyDomain.Request), args.Error(1)
}

// PurgeExpired mocks the PurgeExpired method of UseCase.
func (m *MockRequestUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
