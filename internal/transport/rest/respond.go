// Package rest provides HTTP handlers for product and sale operations.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dpaiva/storemanager/internal/outcome"
	"github.com/dpaiva/storemanager/pkg/web"
)

// respondServiceError maps a service error to the wire. Workflow outcomes keep
// their own status and code; anything else is a storage fault and becomes a
// generic server error.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if oe, ok := outcome.As(err); ok {
		web.RespondError(w, logger, oe.Kind.HTTPStatus(), oe.Kind.Code(), oe.Message)
		return
	}
	logger.ErrorContext(r.Context(), "Request failed", "error", err)
	web.RespondError(w, logger, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// decodeBody decodes a JSON request body into dst. A type mismatch on a
// quantity field is a validation failure, not a malformed request, so it gets
// the invalid_data code the quantity validators use.
func decodeBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && strings.HasSuffix(typeErr.Field, "quantity") {
			web.RespondError(w, logger, http.StatusUnprocessableEntity,
				outcome.KindInvalidData.Code(), `"quantity" must be a number`)
			return false
		}
		logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "bad_request", "Invalid request body")
		return false
	}
	return true
}
