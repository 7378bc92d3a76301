package faults

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-chi/render"

	"faultgate/internal/infrastructure"
	"faultgate/internal/metrics"
	"faultgate/pkg/contracts/events"
)

// Publisher receives one event per mapped error or recovered panic.
// The error feed hub implements it.
type Publisher interface {
	Publish(event events.ErrorEvent)
}

// Options configures a Handler. The zero value is usable: implicit default
// mapper, generic sealed detail, no metrics, no feed.
type Options struct {
	// Mapper is the explicit rule set. When nil the package default is used,
	// which is the implicit-registration variant.
	Mapper *Mapper

	// ExposeDetail includes the scrubbed error text in sealed 500 responses.
	// Leave false outside development.
	ExposeDetail bool

	// Scrubber filters sealed detail text. When nil an empty scrubber is
	// used, which still strips control characters.
	Scrubber *Scrubber

	// IncludeStack attaches stack traces to problem extensions.
	// Leave false outside development.
	IncludeStack bool

	Metrics   *metrics.Registry
	Publisher Publisher
}

// Handler converts errors and panics raised during route evaluation into
// problem responses. A Handler is always sealed: errors no rule matches
// produce a generic 500 instead of falling through to the net/http default.
type Handler struct {
	mapper       *Mapper
	scrubber     *Scrubber
	exposeDetail bool
	includeStack bool
	logger       *slog.Logger
	metrics      *metrics.Registry
	publisher    Publisher
}

// NewHandler creates a sealed fault handler.
func NewHandler(logger *slog.Logger, opts Options) *Handler {
	mapper := opts.Mapper
	if mapper == nil {
		mapper = Default()
	}
	scrubber := opts.Scrubber
	if scrubber == nil {
		scrubber = NewScrubber()
	}

	return &Handler{
		mapper:       mapper,
		scrubber:     scrubber,
		exposeDetail: opts.ExposeDetail,
		includeStack: opts.IncludeStack,
		logger:       logger.With(slog.String("component", "fault_handler")),
		metrics:      opts.Metrics,
		publisher:    opts.Publisher,
	}
}

// HandleError maps err to a problem response. A nil error writes nothing.
func (h *Handler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()
	traceID := infrastructure.GetTraceID(ctx)

	h.logger.ErrorContext(ctx, "request failed",
		slog.String("error", err.Error()),
		slog.String("trace_id", traceID),
		slog.String("method", r.Method),
		slog.String("uri", r.URL.RequestURI()),
		slog.String("remote_addr", r.RemoteAddr),
	)

	problem := h.mapper.Map(err, r)
	if problem == nil {
		problem = h.seal(err, r)
	}
	problem.WithExtension("trace_id", traceID)

	if h.includeStack {
		problem.WithExtension("stack", stackTrace())
	}

	if h.metrics != nil {
		h.metrics.RecordError(string(faultKind(err)), problem.Status)
	}
	h.publish(events.MessageTypeError, r, problem, err)

	render.Render(w, r, problem)
}

// HandlePanic recovers a panic into a problem response. The recovered
// value is wrapped in an internal fault and offered to the mapper, so a
// scoped catch-all rule applies to panics too; without a match the
// response is the sealed generic 500.
func (h *Handler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	ctx := r.Context()
	traceID := infrastructure.GetTraceID(ctx)

	h.logger.ErrorContext(ctx, "panic recovered",
		slog.Any("panic", recovered),
		slog.String("trace_id", traceID),
		slog.String("method", r.Method),
		slog.String("uri", r.URL.RequestURI()),
		slog.String("stack", string(debug.Stack())),
	)

	problem := h.mapper.Map(NewInternal("panic during request handling", nil), r)
	if problem == nil {
		problem = NewProblem(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred",
			r.URL.Path,
		)
	}
	problem.WithExtension("trace_id", traceID)

	if h.includeStack {
		problem.WithExtension("panic", h.scrubber.Scrub(fmt.Sprintf("%v", recovered)))
		problem.WithExtension("stack", stackTrace())
	}

	if h.metrics != nil {
		h.metrics.RecordPanic()
	}
	h.publish(events.MessageTypePanic, r, problem, nil)

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 problem for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblem(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 problem.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblem(
		http.StatusMethodNotAllowed,
		TypeInternal,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context()))

	render.Render(w, r, problem)
}

// seal produces the catch-all 500. Raw error text only appears when
// ExposeDetail is set, and then only after scrubbing.
func (h *Handler) seal(err error, r *http.Request) *Problem {
	detail := "An unexpected error occurred while processing your request"
	if h.exposeDetail {
		detail = h.scrubber.Scrub(err.Error())
	}

	return NewProblem(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		detail,
		r.URL.Path,
	)
}

func (h *Handler) publish(msgType events.MessageType, r *http.Request, problem *Problem, err error) {
	if h.publisher == nil {
		return
	}

	h.publisher.Publish(events.ErrorEvent{
		Type:       msgType,
		OccurredAt: time.Now().UTC(),
		TraceID:    infrastructure.GetTraceID(r.Context()),
		Method:     r.Method,
		Path:       r.URL.Path,
		Status:     problem.Status,
		Problem:    problem.Type,
		Title:      problem.Title,
		Kind:       string(faultKind(err)),
	})
}

// faultKind extracts the kind for metrics and events; non-fault errors
// count as internal.
func faultKind(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindInternal
}

func stackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
