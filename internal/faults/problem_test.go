package faults

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblem_MarshalJSON_MergesExtensions(t *testing.T) {
	p := NewProblem(http.StatusNotFound, TypeNotFound, "Not Found", "widget not found", "/widgets/1").
		WithExtension("trace_id", "abc-123").
		WithExtension("attempt", 2)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, TypeNotFound, out["type"])
	assert.Equal(t, "Not Found", out["title"])
	assert.Equal(t, float64(http.StatusNotFound), out["status"])
	assert.Equal(t, "widget not found", out["detail"])
	assert.Equal(t, "/widgets/1", out["instance"])
	assert.Equal(t, "abc-123", out["trace_id"])
	assert.Equal(t, float64(2), out["attempt"])
}

func TestProblem_MarshalJSON_OmitsEmptyOptionalFields(t *testing.T) {
	p := NewProblem(http.StatusInternalServerError, TypeInternal, "Internal Server Error", "", "")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	_, hasDetail := out["detail"]
	_, hasInstance := out["instance"]
	assert.False(t, hasDetail)
	assert.False(t, hasInstance)
}

func TestProblem_Render_SetsContentTypeAndStatus(t *testing.T) {
	p := NewProblem(http.StatusConflict, TypeConflict, "Conflict", "version mismatch", "/resources/a")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/resources/a", nil)

	require.NoError(t, render.Render(w, r, p))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "version mismatch", out["detail"])
}

func TestProblemFromStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantTitle string
		wantType  string
	}{
		{http.StatusBadRequest, "Bad Request", TypeValidation},
		{http.StatusUnauthorized, "Unauthorized", TypeUnauthorized},
		{http.StatusForbidden, "Forbidden", TypeForbidden},
		{http.StatusNotFound, "Not Found", TypeNotFound},
		{http.StatusConflict, "Conflict", TypeConflict},
		{http.StatusTooManyRequests, "Too Many Requests", TypeRateLimit},
		{http.StatusServiceUnavailable, "Service Unavailable", TypeServiceDown},
		{http.StatusGatewayTimeout, "Gateway Timeout", TypeTimeout},
		{http.StatusTeapot, "I'm a teapot", TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.wantTitle, func(t *testing.T) {
			p := ProblemFromStatus(tt.status, "detail", "/x")
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.wantTitle, p.Title)
			assert.Equal(t, tt.wantType, p.Type)
		})
	}
}
