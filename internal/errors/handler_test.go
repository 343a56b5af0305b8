package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerstats/internal/infrastructure"
	"playerstats/internal/shared/testutil"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantLevel  slog.Level
	}{
		{
			name:       "source unavailable",
			err:        NewSourceError("player workbook unavailable", errors.New("status 502")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeSourceUnavailable,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "parsing",
			err:        NewParsingError("workbook is not xlsx", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataCorrupted,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "app validation",
			err:        NewAppValidationError("unknown export format"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "app not found",
			err:        NewNotFoundError("preset"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "export",
			err:        NewExportError("write failed", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExportFailed,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "config falls through to internal",
			err:        NewConfigError("bad", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "api validation",
			err:        ErrValidation("usage_max", "usage_max must be at most 1000"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("handler: %w", ErrRateLimitExceeded),
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("load: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "unknown",
			err:        errors.New("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			r := httptest.NewRequest(http.MethodGet, "/api/stats/query", nil)
			r = r.WithContext(infrastructure.WithTraceID(r.Context(), "trace-1"))
			w := httptest.NewRecorder()

			h.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/stats/query", body["instance"])
			assert.Equal(t, "trace-1", body["trace_id"])
			assert.NotContains(t, body, "stack")

			testutil.AssertLogContains(t, logs, tt.wantLevel, "request failed")
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	h := NewErrorHandler(nil, false)
	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Zero(t, w.Body.Len())
}

func TestErrorHandler_Extensions(t *testing.T) {
	h := NewErrorHandler(nil, true)
	r := httptest.NewRequest(http.MethodGet, "/api/stats/export", nil)

	t.Run("app error context", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleError(w, r, NewExportError("write failed", nil).WithContext("format", "csv"))
		body := decodeProblem(t, w)
		assert.Equal(t, "EXPORT", body["error_type"])
		assert.Equal(t, "csv", body["format"])
		assert.Contains(t, body, "stack")
		assert.NotContains(t, body, "trace_id")
	})

	t.Run("api error details", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleError(w, r, ErrValidation("format", "format must be one of: xlsx, csv"))
		body := decodeProblem(t, w)
		assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
		details, ok := body["details"].([]interface{})
		require.True(t, ok)
		require.Len(t, details, 1)
		assert.Equal(t, "format", details[0].(map[string]interface{})["field"])
		assert.NotContains(t, body, "stack", "client errors carry no stack")
	})
}

func TestErrorHandler_Recoverer(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	panicky := h.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	panicky.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats/players", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))
	body := decodeProblem(t, w)
	assert.Equal(t, TypeInternal, body["type"])
	assert.NotContains(t, body, "panic")
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")

	t.Run("abort handler is re-panicked", func(t *testing.T) {
		aborting := h.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))
		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			aborting.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}

func TestErrorHandler_RoutingProblems(t *testing.T) {
	h := NewErrorHandler(nil, false)

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/stats/query", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.Contains(t, body["detail"], "DELETE")
}
