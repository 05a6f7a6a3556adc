package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "quantdesk/internal/errors"
	"quantdesk/internal/infrastructure"
	"quantdesk/internal/shared/testutil"
)

func newTestErrorHandler(t *testing.T) (*apierrors.ErrorHandler, *testutil.CaptureHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	return apierrors.NewErrorHandler(logger, true), logs
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestRequestID_GeneratesID(t *testing.T) {
	var gotReqID, gotTraceID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID = GetReqID(r.Context())
		gotTraceID = infrastructure.GetTraceID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Len(t, gotReqID, 36, "generated IDs are UUIDs")
	assert.Equal(t, gotReqID, gotTraceID, "request ID doubles as trace ID")
	assert.Equal(t, gotReqID, w.Header().Get("X-Request-ID"))
}

func TestRequestID_HonoursIncomingHeader(t *testing.T) {
	var gotReqID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID = GetReqID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "upstream-id-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "upstream-id-42", gotReqID)
	assert.Equal(t, "upstream-id-42", w.Header().Get("X-Request-ID"))
}

func TestGetReqID_FallsBackToTraceID(t *testing.T) {
	ctx := infrastructure.WithTraceID(context.Background(), "trace-7")
	assert.Equal(t, "trace-7", GetReqID(ctx))
	assert.Empty(t, GetReqID(context.Background()))
}

func TestStructuredLogger(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)

	handler := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("done"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/hrp/analyze", nil))

	assert.True(t, logs.ContainsMessage("request started"))
	assert.True(t, logs.ContainsMessage("request completed"))
	assert.True(t, logs.ContainsAttr("method", "POST"))
	assert.True(t, logs.ContainsAttr("path", "/api/hrp/analyze"))
	assert.True(t, logs.ContainsAttr("status", int64(http.StatusCreated)))
	assert.True(t, logs.ContainsAttr("bytes", int64(4)))
}

func TestRecoverer(t *testing.T) {
	t.Run("panic becomes problem response", func(t *testing.T) {
		errorHandler, logs := newTestErrorHandler(t)

		handler := Recoverer(errorHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("slice index out of range")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/statarb/test-pair", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, apierrors.TypeInternal, body["type"])
		assert.Equal(t, "slice index out of range", body["panic"])
		assert.True(t, logs.ContainsMessage("panic recovered"))
	})

	t.Run("abort handler panics are re-raised", func(t *testing.T) {
		errorHandler, _ := newTestErrorHandler(t)

		handler := Recoverer(errorHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
		})
	})
}

func TestRateLimiter(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	rl := NewRateLimiter(1, 1, logger, errorHandler)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	body := decodeBody(t, second)
	assert.Equal(t, apierrors.TypeRateLimit, body["type"])
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["error_code"])
	assert.True(t, logs.ContainsMessage("rate limit exceeded"))
}

func TestTimeout(t *testing.T) {
	t.Run("expired deadline yields 504", func(t *testing.T) {
		logger, logs := testutil.NewTestLogger(t)
		errorHandler := apierrors.NewErrorHandler(logger, false)

		handler := Timeout(10*time.Millisecond, logger, errorHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/statarb/find-pairs", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, apierrors.TypeTimeout, body["type"])
		assert.True(t, logs.ContainsMessage("request timeout"))
	})

	t.Run("fast handler is untouched", func(t *testing.T) {
		logger, logs := testutil.NewTestLogger(t)
		errorHandler := apierrors.NewErrorHandler(logger, false)

		handler := Timeout(time.Second, logger, errorHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"ok":true}`))
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, logs.ContainsMessage("request timeout"))
	})
}

func TestCORS(t *testing.T) {
	config := CORSConfig{AllowedOrigins: []string{"http://localhost:8080"}}

	handler := CORS(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/hrp/analyze", nil)
		req.Header.Set("Origin", "http://localhost:8080")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Equal(t, "300", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("disallowed origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple request reaches handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:8080")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
}
