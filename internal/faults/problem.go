package faults

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// Problem type URIs following RFC 7807
const (
	TypeValidation   = "/problems/validation"
	TypeNotFound     = "/problems/not-found"
	TypeUnauthorized = "/problems/unauthorized"
	TypeForbidden    = "/problems/forbidden"
	TypeConflict     = "/problems/conflict"
	TypeRateLimit    = "/problems/rate-limit"
	TypeTimeout      = "/problems/timeout"
	TypeArithmetic   = "/problems/arithmetic"
	TypeBadHeader    = "/problems/illegal-header"
	TypeInternal     = "/problems/internal"
	TypeServiceDown  = "/problems/service-unavailable"
)

// Problem represents an RFC 7807 problem details document
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// NewProblem creates a new problem details document
func NewProblem(status int, problemType, title, detail, instance string) *Problem {
	return &Problem{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (p *Problem) WithExtension(key string, value interface{}) *Problem {
	if p.Extensions == nil {
		p.Extensions = make(map[string]interface{})
	}
	p.Extensions[key] = value
	return p
}

// Render implements the render.Renderer interface
func (p *Problem) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/problem+json")
	render.Status(r, p.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (p *Problem) MarshalJSON() ([]byte, error) {
	type alias Problem
	data := make(map[string]interface{})

	base, err := json.Marshal((*alias)(p))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(base, &data); err != nil {
		return nil, err
	}

	for k, v := range p.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// ProblemFromStatus creates a Problem from a bare HTTP status code
func ProblemFromStatus(status int, detail, instance string) *Problem {
	var title, problemType string

	switch status {
	case http.StatusBadRequest:
		title = "Bad Request"
		problemType = TypeValidation
	case http.StatusUnauthorized:
		title = "Unauthorized"
		problemType = TypeUnauthorized
	case http.StatusForbidden:
		title = "Forbidden"
		problemType = TypeForbidden
	case http.StatusNotFound:
		title = "Not Found"
		problemType = TypeNotFound
	case http.StatusConflict:
		title = "Conflict"
		problemType = TypeConflict
	case http.StatusTooManyRequests:
		title = "Too Many Requests"
		problemType = TypeRateLimit
	case http.StatusServiceUnavailable:
		title = "Service Unavailable"
		problemType = TypeServiceDown
	case http.StatusGatewayTimeout:
		title = "Gateway Timeout"
		problemType = TypeTimeout
	default:
		title = http.StatusText(status)
		problemType = TypeInternal
	}

	return NewProblem(status, problemType, title, detail, instance)
}
