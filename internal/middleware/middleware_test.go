package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultgate/internal/faults"
	"faultgate/internal/infrastructure"
	"faultgate/internal/metrics"
	"faultgate/internal/shared/testutil"
)

func TestRequestID_GeneratesUUID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = infrastructure.GetTraceID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestRequestID_HonorsInboundHeader(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = infrastructure.GetTraceID(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "caller-supplied-id")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, "caller-supplied-id", seen)
	assert.Equal(t, "caller-supplied-id", w.Header().Get("X-Request-ID"))
}

func TestRecoverer_DelegatesPanicToFaultHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	fh := faults.NewHandler(logger, faults.Options{})

	handler := Recoverer(fh)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("route blew up")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.NotContains(t, w.Body.String(), "route blew up")
}

func TestRecoverer_RepanicsOnAbortHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	fh := faults.NewHandler(logger, faults.Options{})

	handler := Recoverer(fh)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

// Two sub-routers with different fault handlers: each subtree's panics
// must be answered by its own handler.
func TestRecoverer_ScopedPerSubRouter(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	publicHandler := faults.NewHandler(logger, faults.Options{})
	strictHandler := faults.NewHandler(logger, faults.Options{
		Mapper: faults.NewMapper(
			faults.OnMatch(func(error) bool { return true }, func(err error, r *http.Request) *faults.Problem {
				return faults.NewProblem(http.StatusServiceUnavailable, faults.TypeServiceDown, "Service Unavailable", "", r.URL.Path)
			}),
		),
	})

	boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("scoped failure")
	})

	r := chi.NewRouter()
	r.Use(Recoverer(publicHandler))
	r.Handle("/public", boom)
	r.Route("/admin", func(r chi.Router) {
		r.Use(Recoverer(strictHandler))
		r.Handle("/boom", boom)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/boom", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimiter_Returns429WithProblem(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	// Zero refill with burst 1: first request passes, second is limited.
	rl := NewRateLimiter(0, 1, logger)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := rl.Handler(ok)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, faults.TypeRateLimit, out["type"])
}

func TestTimeout_CancelsRequestContext(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	fh := faults.NewHandler(logger, faults.Options{})

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			fh.HandleError(w, r, r.Context().Err())
		case <-time.After(2 * time.Second):
			w.WriteHeader(http.StatusOK)
		}
	})

	handler := Timeout(10 * time.Millisecond)(slow)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestRequestMetrics_CountsRequests(t *testing.T) {
	reg := metrics.New()

	handler := RequestMetrics(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))

	families, err := reg.Gatherer().Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "faultgate_requests_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, float64(1), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}
