package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/norvia/storefront-api/internal/common"
)

const (
	msgNotFound       = "Product not found"
	msgCatalogFailure = "Failed to load products"
)

// Handler exposes the public catalog endpoints.
type Handler struct {
	service *Service
	logger  zerolog.Logger
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
	Logger  zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, logger: cfg.Logger}
}

// toAppError classifies a service failure for the HTTP boundary. The
// platform detail stays inside the wrapped error; the message is what the
// client sees.
func toAppError(err error) *common.AppError {
	if errors.Is(err, ErrNotFound) {
		return common.NewAppError("product_not_found", msgNotFound, http.StatusNotFound, err)
	}
	return common.NewAppError("catalog_unavailable", msgCatalogFailure, http.StatusInternalServerError, err)
}

func (h *Handler) renderError(w http.ResponseWriter, appErr *common.AppError, handle string) {
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		evt := h.logger.Error().Err(appErr.Unwrap()).Str("code", appErr.Code)
		if handle != "" {
			evt = evt.Str("handle", handle)
		}
		evt.Msg("catalog request failed")
	}
	common.JSONError(w, appErr.HTTPStatus, appErr.Message)
}

// Products handles GET /api/v1/products.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(r.Context())
	if err != nil {
		h.renderError(w, toAppError(err), "")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"products": products})
}

// ProductDetail handles GET /api/v1/products/{handle}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	product, err := h.service.Product(r.Context(), handle)
	if err != nil {
		h.renderError(w, toAppError(err), handle)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"product": product})
}
