// Package usecase implements the privacy request business logic: create with
// deduplication and confirmation mail, token confirmation, admin listing, and
// expired request purging.
package usecase

import (
	"context"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/privacy/internal/database"
	apperrors "github.com/allisson/privacy/internal/errors"
	"github.com/allisson/privacy/internal/i18n"
	"github.com/allisson/privacy/internal/mail"
	"github.com/allisson/privacy/internal/privacy/domain"
	"github.com/allisson/privacy/internal/privacy/service"
	"github.com/allisson/privacy/internal/routing"
	appValidation "github.com/allisson/privacy/internal/validation"
)

// CreateRequestInput contains the input data for creating a privacy request.
type CreateRequestInput struct {
	Email       string `json:"email"`
	RequestType string `json:"request_type"`
	// UserID carries the requester identity when the submission came from an
	// authenticated session; nil for anonymous requests.
	UserID *uuid.UUID `json:"user_id"`
}

// ConfirmRequestInput contains the input data for confirming a privacy request.
type ConfirmRequestInput struct {
	Email        string `json:"email"`
	ConfirmToken string `json:"confirm_token"`
}

// Config holds the workflow settings for the request use case.
type Config struct {
	// SiteName is substituted into notification mails.
	SiteName string
	// ConfirmTokenTTL is how long a confirmation token stays valid.
	ConfirmTokenTTL time.Duration
	// CompensateOnMailFailure removes a saved request when its confirmation
	// mail cannot be delivered; when false the record stays and the failure
	// is still reported.
	CompensateOnMailFailure bool
}

// RequestUseCase handles privacy request business logic.
type RequestUseCase struct {
	cfg          Config
	txManager    database.TxManager
	requestRepo  RequestRepository
	tokenService service.TokenService
	mailer       mail.Mailer
	links        *routing.LinkBuilder
	catalog      *i18n.Catalog
	logger       *slog.Logger
}

// NewRequestUseCase creates a new RequestUseCase.
func NewRequestUseCase(
	cfg Config,
	txManager database.TxManager,
	requestRepo RequestRepository,
	tokenService service.TokenService,
	mailer mail.Mailer,
	links *routing.LinkBuilder,
	catalog *i18n.Catalog,
	logger *slog.Logger,
) *RequestUseCase {
	return &RequestUseCase{
		cfg:          cfg,
		txManager:    txManager,
		requestRepo:  requestRepo,
		tokenService: tokenService,
		mailer:       mailer,
		links:        links,
		catalog:      catalog,
		logger:       logger,
	}
}

// validateCreateRequestInput validates the submission using jellydator/validation.
// Field errors accumulate so the submitter sees every problem at once.
func (uc *RequestUseCase) validateCreateRequestInput(input CreateRequestInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.RequestType,
			validation.Required.Error("request type is required"),
			validation.In(
				domain.RequestTypeExport.String(),
				domain.RequestTypeRemove.String(),
			).Error("request type must be export or remove"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// CreateRequest implements the request creation workflow: normalize the
// email, validate, deduplicate against open requests, persist with a hashed
// token, and send the confirmation mail.
func (uc *RequestUseCase) CreateRequest(
	ctx context.Context,
	input CreateRequestInput,
) (*domain.Request, error) {
	// Normalize before any comparison or storage.
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	input.Email = email

	if err := uc.validateCreateRequestInput(input); err != nil {
		return nil, err
	}

	requestType := domain.RequestType(input.RequestType)

	// A failed duplicate check aborts the workflow: creating a request
	// without knowing whether one is open risks a duplicate.
	count, err := uc.requestRepo.CountPending(ctx, input.Email, requestType, input.UserID)
	if err != nil {
		uc.logger.Error("duplicate check failed", slog.Any("error", err))
		return nil, domain.ErrDuplicateCheckFailed
	}
	if count > 0 {
		return nil, domain.ErrRequestAlreadyPending
	}

	plainToken, hashedToken, err := uc.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	request := &domain.Request{
		ID:                  uuid.Must(uuid.NewV7()),
		Email:               input.Email,
		RequestType:         requestType,
		UserID:              input.UserID,
		Status:              domain.StatusPending,
		ConfirmToken:        hashedToken,
		ConfirmTokenCreated: now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.requestRepo.Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	msg, err := uc.composeConfirmationMail(request, plainToken)
	if err != nil {
		return nil, err
	}

	if sendErr := uc.mailer.Send(ctx, msg); sendErr != nil {
		if uc.cfg.CompensateOnMailFailure {
			if delErr := uc.requestRepo.Delete(ctx, request.ID); delErr != nil {
				uc.logger.Error("failed to compensate unsent confirmation mail",
					slog.String("request_id", request.ID.String()),
					slog.Any("error", delErr),
				)
			}
		}
		return nil, apperrors.Wrap(sendErr, "confirmation mail not sent")
	}

	return request, nil
}

// composeConfirmationMail renders the subject and body for the request type.
// An unrecognized type at this point is a logic error: validation accepts
// only supported types.
func (uc *RequestUseCase) composeConfirmationMail(
	request *domain.Request,
	plainToken string,
) (mail.Message, error) {
	var bodyKey string
	switch request.RequestType {
	case domain.RequestTypeExport:
		bodyKey = i18n.KeyExportBody
	case domain.RequestTypeRemove:
		bodyKey = i18n.KeyRemoveBody
	default:
		return mail.Message{}, domain.ErrUnknownRequestType
	}

	substitutions := mail.Substitutions{
		"[SITENAME]": uc.cfg.SiteName,
		"[URL]":      uc.links.Root(),
		"[TOKENURL]": uc.links.ConfirmURL(plainToken),
		"[FORMURL]":  uc.links.ConfirmFormURL(),
		"[TOKEN]":    plainToken,
	}

	return mail.Message{
		To:      request.Email,
		Subject: mail.Render(uc.catalog.Resolve(i18n.KeyRequestSubject), substitutions),
		Body:    mail.Render(uc.catalog.Resolve(bodyKey), substitutions),
	}, nil
}

// validateConfirmRequestInput validates the confirmation submission.
func (uc *RequestUseCase) validateConfirmRequestInput(input ConfirmRequestInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
		),
		validation.Field(&input.ConfirmToken,
			validation.Required.Error("confirm token is required"),
			appValidation.NotBlank,
		),
	)
	return appValidation.WrapValidationError(err)
}

// ConfirmRequest verifies a plaintext token against the stored hashes of the
// subject's unconfirmed requests and confirms the matching one.
func (uc *RequestUseCase) ConfirmRequest(
	ctx context.Context,
	input ConfirmRequestInput,
) (*domain.Request, error) {
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	input.Email = email

	if err := uc.validateConfirmRequestInput(input); err != nil {
		return nil, err
	}

	requests, err := uc.requestRepo.ListPendingByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load pending requests")
	}

	for _, request := range requests {
		if !uc.tokenService.CompareToken(input.ConfirmToken, request.ConfirmToken) {
			continue
		}

		if request.ConfirmTokenExpired(uc.cfg.ConfirmTokenTTL) {
			return nil, domain.ErrConfirmTokenExpired
		}

		err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			return uc.requestRepo.UpdateStatus(ctx, request.ID, domain.StatusConfirmed)
		})
		if err != nil {
			return nil, err
		}

		request.Status = domain.StatusConfirmed
		return request, nil
	}

	return nil, domain.ErrConfirmTokenInvalid
}

// ListRequests retrieves privacy requests, optionally filtered by status.
func (uc *RequestUseCase) ListRequests(
	ctx context.Context,
	status *domain.Status,
	limit, offset int,
) ([]*domain.Request, error) {
	if status != nil {
		if err := status.Validate(); err != nil {
			return nil, appValidation.WrapValidationError(err)
		}
	}
	return uc.requestRepo.List(ctx, status, limit, offset)
}

// PurgeExpired removes unconfirmed requests whose confirmation token is older
// than the configured time-to-live.
func (uc *RequestUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-uc.cfg.ConfirmTokenTTL)

	removed, err := uc.requestRepo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		uc.logger.Info("purged expired privacy requests", slog.Int64("removed", removed))
	}

	return removed, nil
}
