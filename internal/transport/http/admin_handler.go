package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"faultgate/internal/faults"
	"faultgate/internal/services"
)

// AdminHandler serves the operator surface. Its routes are mounted behind
// a stricter fault handler scoped to the /api/admin subtree, so failures
// here never reveal more than a service-unavailable problem.
type AdminHandler struct {
	resources    *services.ResourceService
	feed         services.FeedStats
	faultHandler *faults.Handler
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(resources *services.ResourceService, feed services.FeedStats, faultHandler *faults.Handler, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		resources:    resources,
		feed:         feed,
		faultHandler: faultHandler,
		logger:       logger.With(slog.String("component", "admin_handler")),
	}
}

// Routes returns the admin routes
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/stats", h.Stats)
	r.Get("/selftest", h.SelfTest)

	return r
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"resources": h.resources.Count(),
	}
	if h.feed != nil {
		stats["feed_clients"] = h.feed.ClientCount()
	}

	render.JSON(w, r, stats)
}

// SelfTest handles GET /api/admin/selftest. It fails on purpose so
// operators can verify the admin-scoped fault handler: the response must
// be the stricter 503 mapping, not the public one.
func (h *AdminHandler) SelfTest(w http.ResponseWriter, r *http.Request) {
	h.faultHandler.HandleError(w, r, faults.NewInternal("selftest failure", nil))
}
