package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birthdayclub/internal/domain"
)

func TestWriteServiceError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ve := domain.NewValidationError()
	ve.Add("title", "is required")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthenticated"},
		{"validation", fmt.Errorf("create event: %w", ve), http.StatusBadRequest, ErrCodeBadRequest, "invalid input"},
		{"host join", domain.ErrHostCannotJoin, http.StatusBadRequest, ErrCodeBadRequest, "host cannot join own event as guest"},
		{"not found wrapped", fmt.Errorf("get event: %w", domain.ErrEventNotFound), http.StatusNotFound, ErrCodeNotFound, "event not found"},
		{"bare kind", fmt.Errorf("lookup: %w", domain.ErrNotFound), http.StatusNotFound, ErrCodeNotFound, "not found"},
		{"forbidden", domain.ErrWrongInviteCode, http.StatusForbidden, ErrCodeForbidden, "wrong invite code"},
		{"conflict", domain.ErrEventFull, http.StatusConflict, ErrCodeConflict, "event full"},
		{"transition", fmt.Errorf("%w: paid to canceled", domain.ErrInvalidTransition), http.StatusConflict, ErrCodeConflict, "invalid payment status transition"},
		{"upstream", domain.ErrGatewayUnconfigured, http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable, "payment provider is not configured"},
		{"internal", errors.New("pq: deadlock detected"), http.StatusInternalServerError, ErrCodeInternalError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteServiceError(rr, httptest.NewRequest(http.MethodGet, "/", nil), logger, tt.err)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var env APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
			require.NotNil(t, env.Error)
			assert.Nil(t, env.Data)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.Equal(t, tt.wantMsg, env.Error.Message)
		})
	}
}

func TestWriteValidationError_Fields(t *testing.T) {
	ve := domain.NewValidationError()
	ve.Add("max_guests", "must be at most 100")
	rr := httptest.NewRecorder()
	WriteValidationError(rr, ve)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"data":null,"error":{"code":"bad_request","message":"invalid input","fields":{"max_guests":"must be at most 100"}}}`, rr.Body.String())
}

func TestWriteJSONSuccess(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONSuccess(rr, http.StatusCreated, map[string]int{"sent": 2})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"data":{"sent":2},"error":null}`, rr.Body.String())
}
