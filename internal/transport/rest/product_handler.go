package rest

import (
	"log/slog"
	"net/http"

	"github.com/dpaiva/storemanager/internal/service"
	"github.com/dpaiva/storemanager/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ProductHandler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new instance of ProductHandler with the provided service.
func NewProductHandler(service service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for products.
func (h *ProductHandler) RegisterRoutes(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})
}

// FindAll retrieves a list of all products.
func (h *ProductHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{"products": list})
}

// FindByID retrieves a product by its ID.
func (h *ProductHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.ProductUpsertDto
	if !decodeBody(w, r, mLogger, &dto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to create product", "name", dto.Name)
	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", slog.String("ID", created.ID))
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update handles the update of an existing product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	var dto service.ProductUpsertDto
	if !decodeBody(w, r, mLogger, &dto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", slog.String("ID", updated.ID))
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID handles the deletion of a product, returning its previous value.
func (h *ProductHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	deleted, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", slog.String("ID", deleted.ID))
	web.RespondJSON(w, mLogger, http.StatusOK, deleted)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *ProductHandler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
