// Package http provides HTTP handlers for privacy request operations.
package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/privacy/internal/httputil"
	"github.com/allisson/privacy/internal/i18n"
	privacyDomain "github.com/allisson/privacy/internal/privacy/domain"
	"github.com/allisson/privacy/internal/privacy/http/dto"
	privacyUseCase "github.com/allisson/privacy/internal/privacy/usecase"
	customValidation "github.com/allisson/privacy/internal/validation"
)

// RequestHandler handles HTTP requests for the privacy request lifecycle.
type RequestHandler struct {
	useCase privacyUseCase.UseCase
	catalog *i18n.Catalog
	logger  *slog.Logger
}

// NewRequestHandler creates a new request handler with required dependencies.
func NewRequestHandler(useCase privacyUseCase.UseCase, catalog *i18n.Catalog, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		useCase: useCase,
		catalog: catalog,
		logger:  logger,
	}
}

// handleError writes the error response, resolving known domain errors to
// their localized display messages.
func (h *RequestHandler) handleError(c *gin.Context, err error) {
	var message string
	switch {
	case errors.Is(err, privacyDomain.ErrRequestAlreadyPending):
		message = h.catalog.Resolve(i18n.KeyErrAlreadyPending)
	case errors.Is(err, privacyDomain.ErrDuplicateCheckFailed):
		message = h.catalog.Resolve(i18n.KeyErrCheckFailed)
	case errors.Is(err, privacyDomain.ErrUnknownRequestType):
		message = h.catalog.Resolve(i18n.KeyErrUnknownType)
	}
	httputil.HandleErrorMessageGin(c, err, message, h.logger)
}

// CreateHandler submits a new export or removal request.
// POST /v1/privacy/requests
// Returns 201 Created with the stored request (token hash never exposed).
func (h *RequestHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRequestRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := privacyUseCase.CreateRequestInput{
		Email:       req.Email,
		RequestType: req.RequestType,
	}
	if req.UserID != "" {
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			httputil.HandleValidationErrorGin(
				c,
				fmt.Errorf("invalid user_id parameter: must be a valid uuid"),
				h.logger,
			)
			return
		}
		input.UserID = &userID
	}

	request, err := h.useCase.CreateRequest(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRequestToResponse(request))
}

// ConfirmHandler confirms a pending request with the mailed token.
// POST /v1/privacy/requests/confirm
// Returns 200 OK with the confirmed request.
func (h *RequestHandler) ConfirmHandler(c *gin.Context) {
	var req dto.ConfirmRequestRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	request, err := h.useCase.ConfirmRequest(c.Request.Context(), privacyUseCase.ConfirmRequestInput{
		Email:        req.Email,
		ConfirmToken: req.ConfirmToken,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapRequestToResponse(request))
}

// ListHandler retrieves privacy requests with pagination and an optional status filter.
// GET /v1/privacy/requests?status=pending&offset=0&limit=50 - admin only.
func (h *RequestHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var status *privacyDomain.Status
	if statusStr := c.Query("status"); statusStr != "" {
		s := privacyDomain.Status(statusStr)
		status = &s
	}

	requests, err := h.useCase.ListRequests(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapRequestsToListResponse(requests))
}

// PurgeExpiredHandler removes pending requests whose confirmation token has expired.
// POST /v1/privacy/requests/purge - admin only.
func (h *RequestHandler) PurgeExpiredHandler(c *gin.Context) {
	removed, err := h.useCase.PurgeExpired(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PurgeResponse{Removed: removed})
}
