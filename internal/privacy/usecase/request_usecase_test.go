package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/privacy/internal/config"
	apperrors "github.com/allisson/privacy/internal/errors"
	"github.com/allisson/privacy/internal/i18n"
	"github.com/allisson/privacy/internal/mail"
	"github.com/allisson/privacy/internal/privacy/domain"
	"github.com/allisson/privacy/internal/privacy/service"
	"github.com/allisson/privacy/internal/routing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	// Execute the function to test the logic inside
	return fn(ctx)
}

// MockRequestRepository is a mock implementation of RequestRepository
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, request *domain.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestRepository) CountPending(
	ctx context.Context,
	email string,
	requestType domain.RequestType,
	userID *uuid.UUID,
) (int, error) {
	args := m.Called(ctx, email, requestType, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}

func (m *MockRequestRepository) ListPendingByEmail(
	ctx context.Context,
	email string,
) ([]*domain.Request, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Request), args.Error(1)
}

func (m *MockRequestRepository) List(
	ctx context.Context,
	status *domain.Status,
	limit, offset int,
) ([]*domain.Request, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Request), args.Error(1)
}

func (m *MockRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRequestRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockMailer is a mock implementation of mail.Mailer that captures messages.
type MockMailer struct {
	mock.Mock
	Sent []mail.Message
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		m.Sent = append(m.Sent, msg)
	}
	return args.Error(0)
}

// tokenFromBody extracts the plaintext token from the rendered mail body.
var tokenFromBody = regexp.MustCompile(`code: ([A-Za-z0-9_=-]+)`)

type testDeps struct {
	txManager    *MockTxManager
	requestRepo  *MockRequestRepository
	mailer       *MockMailer
	tokenService service.TokenService
}

func setupUseCase(t *testing.T, cfg Config) (*RequestUseCase, *testDeps) {
	t.Helper()

	tokenService, err := service.NewTokenService()
	require.NoError(t, err)

	links, err := routing.NewLinkBuilder("http://example.com", config.ForceSSLOff)
	require.NoError(t, err)

	deps := &testDeps{
		txManager:    &MockTxManager{},
		requestRepo:  &MockRequestRepository{},
		mailer:       &MockMailer{},
		tokenService: tokenService,
	}

	if cfg.SiteName == "" {
		cfg.SiteName = "Example Site"
	}
	if cfg.ConfirmTokenTTL == 0 {
		cfg.ConfirmTokenTTL = 24 * time.Hour
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uc := NewRequestUseCase(
		cfg,
		deps.txManager,
		deps.requestRepo,
		deps.tokenService,
		deps.mailer,
		links,
		i18n.NewCatalog("en"),
		logger,
	)

	return uc, deps
}

func TestRequestUseCase_CreateRequest_Success(t *testing.T) {
	uc, deps := setupUseCase(t, Config{})
	ctx := context.Background()

	deps.requestRepo.On("CountPending", ctx, "user@example.com", domain.RequestTypeExport, (*uuid.UUID)(nil)).
		Return(0, nil)
	deps.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	deps.requestRepo.On("Create", ctx, mock.AnythingOfType("*domain.Request")).Return(nil)
	deps.mailer.On("Send", ctx, mock.AnythingOfType("mail.Message")).Return(nil)

	request, err := uc.CreateRequest(ctx, CreateRequestInput{
		Email:       "user@example.com",
		RequestType: "export",
	})

	require.NoError(t, err)
	require.NotNil(t, request)
	assert.Equal(t, "user@example.com", request.Email)
	assert.Equal(t, domain.RequestTypeExport, request.RequestType)
	assert.Equal(t, domain.StatusPending, request.Status)
	assert.Nil(t, request.UserID)
	assert.NotEmpty(t, request.ConfirmToken)

	// Exactly one mail, sent to the normalized submitted address.
	require.Len(t, deps.mailer.Sent, 1)
	msg := deps.mailer.Sent[0]
	assert.Equal(t, "user@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Example Site")
	assert.Contains(t, msg.Body, "http://example.com/privacy/confirm?confirm_token=")

	// The persisted hash never equals the mailed plaintext token, and the
	// plaintext verifies against the hash.
	matches := tokenFromBody.FindStringSubmatch(msg.Body)
	require.Len(t, matches, 2)
	plainToken := matches[1]
	assert.NotEqual(t, plainToken, request.ConfirmToken)
	assert.True(t, deps.tokenService.CompareToken(plainToken, request.ConfirmToken))

	deps.requestRepo.AssertExpectations(t)
	deps.mailer.AssertExpectations(t)
}

func TestRequestUseCase_CreateRequest_PunycodeNormalization(t *testing.T) {
	uc, deps := setupUseCase(t, Config{})
	ctx := context.Background()

	deps.requestRepo.On("CountPending", ctx, "user@xn--exmple-cua.com", domain.RequestTypeExport, (*uuid.UUID)(nil)).
		Return(0, nil)
	deps.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	deps.requestRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Request) bool {
		return r.Email == "user@xn--exmple-cua.com" && r.UserID == nil
	})).Return(nil)
	deps.mailer.On("Send", ctx, mock.AnythingOfType("mail.Message")).Return(nil)

	request, err := uc.CreateRequest(ctx, CreateRequestInput{
		Email:       "user@exämple.com",
		RequestType: "export",
	})

	require.NoError(t, err)
	assert.Equal(t, "user@xn--exmple-cua.com", request.Email)
	require.Len(t, deps.mailer.Sent, 1)
	assert.Equal(t, "user@xn--exmple-cua.com", deps.mailer.Sent[0].To)

	deps.requestRepo.AssertExpectations(t)
}

func TestRequestUseCase_CreateRequest_AuthenticatedIdentity(t *testing.T) {
	uc, deps := setupUseCase(t, Config{})
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	deps.requestRepo.On("CountPending", ctx, "user@example.com", domain.RequestTypeRemove, &userID).
		Return(0, nil)
	deps.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	deps.requestRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Request) bool {
		return r.UserID != nil && *r.UserID == userID
	})).Return(nil)
	deps.mailer.On("Send", ctx, mock.AnythingOfType("mail.Message")).Return(nil)

	request, err := uc.CreateRequest(ctx, CreateRequestInput{
		Email:       "user@example.com",
		RequestType: "remove",
		UserID:      &userID,
	})

	require.NoError(t, err)
	require.NotNil(t, request.UserID)
	assert.Equal(t, userID, *request.UserID)

	deps.requestRepo.AssertExpectations(t)
}

func TestRequestUseCase_CreateRequest_ValidationErrors(t *testing.T) {
	uc, deps := setupUseCase(t, Config{})
	ctx := context.Background()

	t.Run("invalid email", func(t *testing.T) {
		_, err := uc.CreateRequest(ctx, CreateRequestInput{
			Email:       "not-an-email",
			RequestType: "export",
		})

		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "must be a valid email address")
	})

	t.Run("missing request type", func(t *testing.T) {
		_, err := uc.CreateRequest(ctx, CreateRequestInput{
			Email: "user@example.com",
		})

		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "request type is required")
	})

	t.Run("unsupported request type", func(t *testing.T) {
		_, err := uc.CreateRequest(ctx, CreateRequestInput{
			Email:       "user@example.com",
			RequestType: "purge",
		})

		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "request type must be export or remove")
	})

	t.Run("all field errors accumulate", func(t *testing.T) {
		_, err := uc.CreateRequest(ctx, CreateRequestInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "email")
		assert.Contains(t, err.Error(), "request_type")
	})

	// No persistence and no mail on any validation failure.
	deps.requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	deps.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRequestUseCase_CreateRequest_AlreadyPending(t *testing.T) {
	uc, deps := setupUseCase(t, Config{})
	ctx := context.Background()

	deps.requestRepo.On("CountPending", ctx, "user@example.com", domain.RequestTypeExport, (*uuid.UUID)(nil)).
		Return(1, nil)

	_, err := uc.CreateRequest(ctx, CreateRequestInput{
		Email:       "user@example.com",
		RequestType: "export",
	})

	assert.ErrorIs(t, err, domain.ErrRequestAlreadyPending)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	deps.requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	deps.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRequestUseCase_CreateRequest_DuplicateCheckFailure(t *testing.T) {
	uc, deps := setupUseCase(t, Config{})
	ctx := context.Background()

	deps.requestRepo.On("CountPending", ctx, "user@example.com", domain.RequestTypeExport, (*uuid.UUID)(nil)).
		Return(0, errors.New("connection refused"))

	_, err := uc.CreateRequest(ctx, CreateRequestInput{
		Email:       "user@example.com",
		RequestType: "export",
	})

	// Generic check-failure error without leaking the database error.
	assert.ErrorIs(t, err, domain.ErrDuplicateCheckFailed)
	assert.NotContains(t, err.Error(), "connection refused")

	deps.requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	deps.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRequestUseCase_CreateRequest_PersistenceFailure(t *testing.T) {
	uc, deps := setupUseCase(t, Config{})
	ctx := context.Background()

	deps.requestRepo.On("CountPending", ctx, "user@example.com", domain.RequestTypeExport, (*uuid.UUID)(nil)).
		Return(0, nil)
	deps.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	deps.requestRepo.On("Create", ctx, mock.AnythingOfType("*domain.Request")).
		Return(domain.ErrRequestAlreadyPending)

	_, err := uc.CreateRequest(ctx, CreateRequestInput{
		Email:       "user@example.com",
		RequestType: "export",
	})

	// A unique-violation loser of the check-then-insert race gets the same
	// conflict answer as a sequential duplicate.
	assert.ErrorIs(t, err, domain.ErrRequestAlreadyPending)
	deps.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRequestUseCase_CreateRequest_MailFailure(t *testing.T) {
	t.Run("record is kept when compensation is off", func(t *testing.T) {
		uc, deps := setupUseCase(t, Config{CompensateOnMailFailure: false})
		ctx := context.Background()

		deps.requestRepo.On("CountPending", ctx, "user@example.com", domain.RequestTypeExport, (*uuid.UUID)(nil)).
			Return(0, nil)
		deps.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		deps.requestRepo.On("Create", ctx, mock.AnythingOfType("*domain.Request")).Return(nil)
		deps.mailer.On("Send", ctx, mock.AnythingOfType("mail.Message")).
			Return(mail.ErrSendFailed)

		_, err := uc.CreateRequest(ctx, CreateRequestInput{
			Email:       "user@example.com",
			RequestType: "export",
		})

		assert.ErrorIs(t, err, mail.ErrSendFailed)
		deps.requestRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("record is removed when compensation is on", func(t *testing.T) {
		uc, deps := setupUseCase(t, Config{CompensateOnMailFailure: true})
		ctx := context.Background()

		deps.requestRepo.On("CountPending", ctx, "user@example.com", domain.RequestTypeExport, (*uuid.UUID)(nil)).
			Return(0, nil)
		deps.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		deps.requestRepo.On("Create", ctx, mock.AnythingOfType("*domain.Request")).Return(nil)
		deps.requestRepo.On("Delete", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)
		deps.mailer.On("Send", ctx, mock.AnythingOfType("mail.Message")).
			Return(mail.ErrSendFailed)

		_, err := uc.CreateRequest(ctx, CreateRequestInput{
			Email:       "user@example.com",
			RequestType: "export",
		})

		assert.ErrorIs(t, err, mail.ErrSendFailed)
		deps.requestRepo.AssertCalled(t, "Delete", ctx, mock.AnythingOfType("uuid.UUID"))
	})
}

func TestRequestUseCase_ConfirmRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		uc, deps := setupUseCase(t, Config{})

		plain, hashed, err := deps.tokenService.GenerateToken()
		require.NoError(t, err)

		pending := &domain.Request{
			ID:                  uuid.Must(uuid.NewV7()),
			Email:               "user@example.com",
			RequestType:         domain.RequestTypeExport,
			Status:              domain.StatusPending,
			ConfirmToken:        hashed,
			ConfirmTokenCreated: time.Now().UTC(),
		}

		deps.requestRepo.On("ListPendingByEmail", ctx, "user@example.com").
			Return([]*domain.Request{pending}, nil)
		deps.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		deps.requestRepo.On("UpdateStatus", ctx, pending.ID, domain.StatusConfirmed).Return(nil)

		confirmed, err := uc.ConfirmRequest(ctx, ConfirmRequestInput{
			Email:        "user@example.com",
			ConfirmToken: plain,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
		deps.requestRepo.AssertExpectations(t)
	})

	t.Run("wrong token", func(t *testing.T) {
		uc, deps := setupUseCase(t, Config{})

		_, hashed, err := deps.tokenService.GenerateToken()
		require.NoError(t, err)

		pending := &domain.Request{
			ID:                  uuid.Must(uuid.NewV7()),
			Email:               "user@example.com",
			Status:              domain.StatusPending,
			ConfirmToken:        hashed,
			ConfirmTokenCreated: time.Now().UTC(),
		}

		deps.requestRepo.On("ListPendingByEmail", ctx, "user@example.com").
			Return([]*domain.Request{pending}, nil)

		_, err = uc.ConfirmRequest(ctx, ConfirmRequestInput{
			Email:        "user@example.com",
			ConfirmToken: "some-other-token",
		})

		assert.ErrorIs(t, err, domain.ErrConfirmTokenInvalid)
		deps.requestRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired token", func(t *testing.T) {
		uc, deps := setupUseCase(t, Config{ConfirmTokenTTL: time.Hour})

		plain, hashed, err := deps.tokenService.GenerateToken()
		require.NoError(t, err)

		pending := &domain.Request{
			ID:                  uuid.Must(uuid.NewV7()),
			Email:               "user@example.com",
			Status:              domain.StatusPending,
			ConfirmToken:        hashed,
			ConfirmTokenCreated: time.Now().UTC().Add(-2 * time.Hour),
		}

		deps.requestRepo.On("ListPendingByEmail", ctx, "user@example.com").
			Return([]*domain.Request{pending}, nil)

		_, err = uc.ConfirmRequest(ctx, ConfirmRequestInput{
			Email:        "user@example.com",
			ConfirmToken: plain,
		})

		assert.ErrorIs(t, err, domain.ErrConfirmTokenExpired)
	})

	t.Run("no pending requests", func(t *testing.T) {
		uc, deps := setupUseCase(t, Config{})

		deps.requestRepo.On("ListPendingByEmail", ctx, "user@example.com").
			Return([]*domain.Request{}, nil)

		_, err := uc.ConfirmRequest(ctx, ConfirmRequestInput{
			Email:        "user@example.com",
			ConfirmToken: "irrelevant",
		})

		assert.ErrorIs(t, err, domain.ErrConfirmTokenInvalid)
	})

	t.Run("missing token fails validation", func(t *testing.T) {
		uc, _ := setupUseCase(t, Config{})

		_, err := uc.ConfirmRequest(ctx, ConfirmRequestInput{Email: "user@example.com"})

		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestRequestUseCase_ListRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("passes filter through", func(t *testing.T) {
		uc, deps := setupUseCase(t, Config{})
		status := domain.StatusPending

		deps.requestRepo.On("List", ctx, &status, 10, 0).
			Return([]*domain.Request{}, nil)

		requests, err := uc.ListRequests(ctx, &status, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, requests)
	})

	t.Run("rejects invalid status filter", func(t *testing.T) {
		uc, _ := setupUseCase(t, Config{})
		status := domain.Status("open")

		_, err := uc.ListRequests(ctx, &status, 10, 0)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestRequestUseCase_PurgeExpired(t *testing.T) {
	uc, deps := setupUseCase(t, Config{ConfirmTokenTTL: 24 * time.Hour})
	ctx := context.Background()

	deps.requestRepo.On("DeleteExpired", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		expected := time.Now().UTC().Add(-24 * time.Hour)
		return cutoff.Sub(expected).Abs() < time.Minute
	})).Return(int64(2), nil)

	removed, err := uc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}
