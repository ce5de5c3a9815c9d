package rest

import (
	"log/slog"
	"net/http"

	"github.com/dpaiva/storemanager/internal/service"
	"github.com/dpaiva/storemanager/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type SaleHandler struct {
	service service.SaleService
	logger  *slog.Logger
}

// NewSaleHandler creates a new instance of SaleHandler with the provided service.
func NewSaleHandler(service service.SaleService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for sales.
func (h *SaleHandler) RegisterRoutes(r *chi.Mux) {
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})
	r.Get("/healthz", h.HealthCheck)
}

// FindAll retrieves a list of all sales.
func (h *SaleHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved sale list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{"sales": list})
}

// FindByID retrieves a sale by its ID.
func (h *SaleHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to find sale by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new sale. The body is a list of
// (product_id, quantity) line items.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var items []service.SaleItemCreateDto
	if !decodeBody(w, r, mLogger, &items) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to create sale", "items", len(items))
	created, err := h.service.Create(r.Context(), items)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Sale created successfully", slog.String("ID", created.ID))
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update replaces the line items of an existing sale.
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	var items []service.SaleItemCreateDto
	if !decodeBody(w, r, mLogger, &items) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update sale", "ID", id)
	updated, err := h.service.Update(r.Context(), id, items)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Sale updated successfully", slog.String("ID", updated.ID))
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID handles the deletion of a sale, returning its previous value.
func (h *SaleHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to delete sale", "ID", id)
	deleted, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Sale deleted successfully", slog.String("ID", deleted.ID))
	web.RespondJSON(w, mLogger, http.StatusOK, deleted)
}

// HealthCheck is a simple health check endpoint.
func (h *SaleHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *SaleHandler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
