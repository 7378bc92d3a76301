package http

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"faultgate/internal/faults"
)

// ProbeHeader is validated on every echo request. Its value is
// caller-controlled and treated as hostile.
const ProbeHeader = "X-Fault-Probe"

// InnerHeader is set by the echo handler itself, underneath whatever
// header-injecting middleware wraps the route.
const InnerHeader = "X-Echo-Inner"

// EchoHandler reflects request metadata back to the caller. It exists to
// demonstrate header injection combined with fault handling: the outer
// injected header and the handler's own header must both survive, on
// success and on mapped errors alike.
type EchoHandler struct {
	faultHandler *faults.Handler
	logger       *slog.Logger
}

// NewEchoHandler creates a new echo handler
func NewEchoHandler(faultHandler *faults.Handler, logger *slog.Logger) *EchoHandler {
	return &EchoHandler{
		faultHandler: faultHandler,
		logger:       logger.With(slog.String("component", "echo_handler")),
	}
}

// Routes returns the echo routes
func (h *EchoHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/headers", h.Headers)

	return r
}

// Headers handles GET /api/echo/headers
func (h *EchoHandler) Headers(w http.ResponseWriter, r *http.Request) {
	if probe := r.Header.Get(ProbeHeader); probe != "" {
		if err := checkHeaderValue(ProbeHeader, probe); err != nil {
			h.faultHandler.HandleError(w, r, err)
			return
		}
	}

	w.Header().Set(InnerHeader, "echo")

	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}

	render.JSON(w, r, map[string]interface{}{
		"headers": names,
		"probe":   r.Header.Get(ProbeHeader),
	})
}

// checkHeaderValue rejects values that could carry markup or control
// sequences. The returned error holds the raw value for server-side logs;
// the mapped response only ever names the header.
func checkHeaderValue(name, value string) error {
	if strings.ContainsAny(value, "<>\"'") {
		return &faults.IllegalHeaderError{Name: name, Value: value}
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return &faults.IllegalHeaderError{Name: name, Value: value}
		}
	}
	return nil
}
