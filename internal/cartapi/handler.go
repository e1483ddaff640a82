package cartapi

import (
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/norvia/storefront-api/internal/cart"
	"github.com/norvia/storefront-api/internal/common"
	"github.com/norvia/storefront-api/internal/obs"
	"github.com/norvia/storefront-api/internal/shopify"
)

// Handler is the cart mutation facade: one inbound endpoint, one action
// selector, each action mapping 1:1 to a storefront client call. Platform
// error detail is logged server-side and never echoed to the browser.
type Handler struct {
	Commerce cart.Commerce
	Logger   zerolog.Logger
	Validate *validator.Validate
}

const (
	msgInvalidRequest = "Invalid request"
	msgInvalidAction  = "Invalid action"
	msgGenericFailure = "Failed to process cart operation"
)

type actionRequest struct {
	Action    string   `json:"action" validate:"required"`
	CartID    string   `json:"cartId"`
	VariantID string   `json:"variantId"`
	Quantity  *int     `json:"quantity"`
	LineID    string   `json:"lineId"`
	LineIDs   []string `json:"lineIds"`
}

func (req actionRequest) quantityOrDefault() int {
	if req.Quantity == nil || *req.Quantity < 1 {
		return 1
	}
	return *req.Quantity
}

// toAppError classifies a storefront failure. The client message is always
// the generic one; the code separates platform rejections from transport
// failures in the logs.
func toAppError(err error) *common.AppError {
	code := "cart_transport_failure"
	if shopify.IsUserError(err) {
		code = "cart_platform_rejected"
	}
	return common.NewAppError(code, msgGenericFailure, http.StatusInternalServerError, err)
}

// Dispatch handles POST /api/v1/shopify/cart.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := common.DecodeJSON(r, &req, 64<<10); err != nil {
		common.JSONError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, msgInvalidRequest)
			return
		}
	}

	ctx := r.Context()
	var (
		result *shopify.Cart
		err    error
	)
	switch req.Action {
	case "create":
		result, err = h.Commerce.CreateCart(ctx, req.VariantID, req.quantityOrDefault())
	case "add":
		result, err = h.Commerce.AddToCart(ctx, req.CartID, req.VariantID, req.quantityOrDefault())
	case "update":
		quantity := 0
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		result, err = h.Commerce.UpdateCartLine(ctx, req.CartID, req.LineID, quantity)
	case "remove":
		result, err = h.Commerce.RemoveFromCart(ctx, req.CartID, req.LineIDs)
	case "get":
		result, err = h.Commerce.GetCart(ctx, req.CartID)
	default:
		h.observe(req.Action, "invalid")
		common.JSONError(w, http.StatusBadRequest, msgInvalidAction)
		return
	}

	if err != nil {
		appErr := toAppError(err)
		h.observe(req.Action, "error")
		h.Logger.Error().Err(appErr.Unwrap()).Str("action", req.Action).Str("code", appErr.Code).Msg("cart action failed")
		common.JSONError(w, appErr.HTTPStatus, appErr.Message)
		return
	}

	h.observe(req.Action, "ok")
	common.JSON(w, http.StatusOK, map[string]any{"cart": result})
}

func (h *Handler) observe(action, result string) {
	if obs.CartActionsTotal != nil {
		obs.CartActionsTotal.WithLabelValues(action, result).Inc()
	}
}
