package faults

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFault_Error(t *testing.T) {
	tests := []struct {
		name  string
		fault *Fault
		want  string
	}{
		{
			name:  "without cause",
			fault: New(KindValidation, "bad input", nil),
			want:  "[VALIDATION] bad input",
		},
		{
			name:  "with cause",
			fault: New(KindInternal, "query failed", errors.New("connection refused")),
			want:  "[INTERNAL] query failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fault.Error())
		})
	}
}

func TestFault_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	f := New(KindInternal, "wrapped", cause)

	assert.True(t, errors.Is(f, cause))
	assert.Equal(t, cause, errors.Unwrap(f))
}

func TestFault_ErrorsAs(t *testing.T) {
	var f *Fault
	err := fmt.Errorf("outer: %w", NewNotFound("resource"))

	require.True(t, errors.As(err, &f))
	assert.Equal(t, KindNotFound, f.Kind)
	assert.Equal(t, "resource not found", f.Message)
}

func TestFault_WithContext(t *testing.T) {
	f := NewConflict("version mismatch").
		WithContext("expected", 3).
		WithContext("actual", 5)

	assert.Equal(t, 3, f.Context["expected"])
	assert.Equal(t, 5, f.Context["actual"])
}

func TestErrDivideByZero_Sentinel(t *testing.T) {
	wrapped := fmt.Errorf("calc: %w", ErrDivideByZero)

	assert.True(t, errors.Is(wrapped, ErrDivideByZero))
	assert.False(t, errors.Is(NewValidation("other"), ErrDivideByZero))
}

func TestHelperConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Fault
		kind Kind
	}{
		{"validation", NewValidation("x"), KindValidation},
		{"not found", NewNotFound("x"), KindNotFound},
		{"conflict", NewConflict("x"), KindConflict},
		{"forbidden", NewForbidden("x"), KindForbidden},
		{"internal", NewInternal("x", nil), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
		})
	}
}

func TestIllegalHeaderError_ErrorIncludesValueForLogs(t *testing.T) {
	err := &IllegalHeaderError{Name: "X-Fault-Probe", Value: "<script>"}

	// The error string is log-only and must carry the raw value.
	assert.Contains(t, err.Error(), "<script>")
	assert.Contains(t, err.Error(), "X-Fault-Probe")
}
