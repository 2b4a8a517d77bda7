package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/privacy/internal/config"
	"github.com/allisson/privacy/internal/i18n"
	privacyDomain "github.com/allisson/privacy/internal/privacy/domain"
	privacyHTTP "github.com/allisson/privacy/internal/privacy/http"
	"github.com/allisson/privacy/internal/privacy/http/mocks"
)

func setupTestServer(t *testing.T) (*Server, *mocks.MockRequestUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServerHost:       "127.0.0.1",
		ServerPort:       8080,
		AdminAPIKey:      "admin-key",
		RateLimitEnabled: false,
	}

	mockUseCase := &mocks.MockRequestUseCase{}
	handler := privacyHTTP.NewRequestHandler(mockUseCase, i18n.NewCatalog("en"), testLogger())
	server := NewServer(cfg, handler, nil, testLogger())

	return server, mockUseCase
}

func TestServer_Routes(t *testing.T) {
	t.Run("Health", func(t *testing.T) {
		server, _ := setupTestServer(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		server.GetHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	})

	t.Run("PublicCreateRequest", func(t *testing.T) {
		server, mockUseCase := setupTestServer(t)

		now := time.Now().UTC()
		stored := &privacyDomain.Request{
			ID:          uuid.Must(uuid.NewV7()),
			Email:       "user@example.com",
			RequestType: privacyDomain.RequestTypeExport,
			Status:      privacyDomain.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		mockUseCase.On("CreateRequest", mock.Anything, mock.Anything).Return(stored, nil).Once()

		body, _ := json.Marshal(map[string]string{
			"email":        "user@example.com",
			"request_type": "export",
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		server.GetHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("AdminListWithoutKey", func(t *testing.T) {
		server, mockUseCase := setupTestServer(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/privacy/requests", nil)
		server.GetHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUseCase.AssertNotCalled(t, "ListRequests", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AdminListWithKey", func(t *testing.T) {
		server, mockUseCase := setupTestServer(t)

		mockUseCase.On("ListRequests", mock.Anything, (*privacyDomain.Status)(nil), 50, 0).
			Return([]*privacyDomain.Request{}, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/privacy/requests", nil)
		req.Header.Set("Authorization", "Bearer admin-key")
		server.GetHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("AdminPurgeWithKey", func(t *testing.T) {
		server, mockUseCase := setupTestServer(t)

		mockUseCase.On("PurgeExpired", mock.Anything).Return(int64(1), nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/privacy/requests/purge", nil)
		req.Header.Set("Authorization", "Bearer admin-key")
		server.GetHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "removed")
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		server, _ := setupTestServer(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/unknown", nil)
		server.GetHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMetricsServer_NoProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)

	server := NewMetricsServer("127.0.0.1", 8081, testLogger(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
