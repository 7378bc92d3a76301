package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"faultgate/internal/faults"
	"faultgate/internal/services"
)

// CalcHandler handles arithmetic HTTP requests
type CalcHandler struct {
	service      *services.CalcService
	faultHandler *faults.Handler
	logger       *slog.Logger
}

// NewCalcHandler creates a new calc handler
func NewCalcHandler(service *services.CalcService, faultHandler *faults.Handler, logger *slog.Logger) *CalcHandler {
	return &CalcHandler{
		service:      service,
		faultHandler: faultHandler,
		logger:       logger.With(slog.String("component", "calc_handler")),
	}
}

// Routes returns the calc routes
func (h *CalcHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/divide", h.Divide)
	r.Get("/panic", h.Panic)

	return r
}

// Divide handles GET /api/calc/divide?a=&b=
func (h *CalcHandler) Divide(w http.ResponseWriter, r *http.Request) {
	a, err := intParam(r, "a")
	if err != nil {
		h.faultHandler.HandleError(w, r, err)
		return
	}
	b, err := intParam(r, "b")
	if err != nil {
		h.faultHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Divide(r.Context(), a, b)
	if err != nil {
		h.faultHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]int{"result": result})
}

// Panic handles GET /api/calc/panic. It exists to exercise sealing: the
// panic must surface as a generic 500 problem, never as a blank connection
// reset.
func (h *CalcHandler) Panic(w http.ResponseWriter, r *http.Request) {
	panic("deliberate failure in calc handler")
}

// intParam parses a required integer query parameter
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, faults.NewValidation("missing query parameter '" + name + "'")
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, faults.NewValidation("query parameter '" + name + "' must be an integer")
	}
	return v, nil
}
