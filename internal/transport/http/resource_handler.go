package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"faultgate/internal/faults"
	"faultgate/internal/services"
)

// ResourceHandler handles resource HTTP requests
type ResourceHandler struct {
	service      *services.ResourceService
	faultHandler *faults.Handler
	validate     *validator.Validate
	logger       *slog.Logger
}

// putResourceRequest is the PUT body
type putResourceRequest struct {
	Body    string `json:"body" validate:"required,max=4096"`
	Version int    `json:"version" validate:"gte=0"`
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(service *services.ResourceService, faultHandler *faults.Handler, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{
		service:      service,
		faultHandler: faultHandler,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "resource_handler")),
	}
}

// Routes returns the resource routes
func (h *ResourceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Put)
	r.Delete("/{id}", h.Delete)

	return r
}

// Get handles GET /api/resources/{id}
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.faultHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, res)
}

// Put handles PUT /api/resources/{id}
func (h *ResourceHandler) Put(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req putResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.faultHandler.HandleError(w, r, faults.NewValidation("request body is not valid JSON"))
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.faultHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Put(r.Context(), id, req.Body, req.Version)
	if err != nil {
		h.faultHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, res)
}

// Delete handles DELETE /api/resources/{id}
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.faultHandler.HandleError(w, r, err)
		return
	}

	render.NoContent(w, r)
}
