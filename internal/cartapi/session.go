package cartapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/norvia/storefront-api/internal/cart"
	"github.com/norvia/storefront-api/internal/common"
)

type sessionKey struct{}

// SessionConfig controls the session cookie issued to each browser tab.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

func (c SessionConfig) cookieName() string {
	if strings.TrimSpace(c.CookieName) == "" {
		return "sid"
	}
	return c.CookieName
}

// Middleware ensures every request carries a session identifier, issuing a
// fresh cookie on first touch.
func (c SessionConfig) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if cookie, err := r.Cookie(c.cookieName()); err == nil {
			sid = strings.TrimSpace(cookie.Value)
		}
		if sid == "" {
			sid = uuid.NewString()
			ttl := c.TTL
			if ttl <= 0 {
				ttl = 30 * 24 * time.Hour
			}
			http.SetCookie(w, &http.Cookie{
				Name:     c.cookieName(),
				Value:    sid,
				Path:     "/",
				MaxAge:   int(ttl / time.Second),
				HttpOnly: true,
				Secure:   c.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sid)))
	})
}

// SessionID extracts the session identifier injected by the middleware.
func SessionID(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey{}).(string); ok {
		return v
	}
	return ""
}

// SessionHandler exposes the per-session cart store over HTTP. Failures
// surface as an unchanged snapshot: the shopper never sees a raw error.
type SessionHandler struct {
	Manager *cart.Manager
}

func (h *SessionHandler) store(r *http.Request) *cart.Store {
	return h.Manager.Session(SessionID(r.Context()))
}

// State handles GET /api/v1/cart: rehydrate if needed and return the
// session's snapshot.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	if store.Snapshot().Cart == nil {
		store.Initialize(r.Context())
	}
	common.JSON(w, http.StatusOK, store.Snapshot())
}

type addItemRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// AddItem handles POST /api/v1/cart/items.
func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := common.DecodeJSON(r, &req, 16<<10); err != nil || strings.TrimSpace(req.VariantID) == "" {
		common.JSONError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	store := h.store(r)
	_ = store.AddItem(r.Context(), req.VariantID, req.Quantity)
	common.JSON(w, http.StatusOK, store.Snapshot())
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// UpdateItem handles PATCH /api/v1/cart/items/{lineID}. Quantity zero is a
// removal request.
func (h *SessionHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")
	var req updateItemRequest
	if err := common.DecodeJSON(r, &req, 16<<10); err != nil || req.Quantity == nil || lineID == "" {
		common.JSONError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	store := h.store(r)
	_ = store.UpdateItem(r.Context(), lineID, *req.Quantity)
	common.JSON(w, http.StatusOK, store.Snapshot())
}

type removeItemsRequest struct {
	LineIDs []string `json:"lineIds"`
}

// RemoveItems handles DELETE /api/v1/cart/items.
func (h *SessionHandler) RemoveItems(w http.ResponseWriter, r *http.Request) {
	var req removeItemsRequest
	if err := common.DecodeJSON(r, &req, 16<<10); err != nil || len(req.LineIDs) == 0 {
		common.JSONError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	store := h.store(r)
	_ = store.RemoveItem(r.Context(), req.LineIDs)
	common.JSON(w, http.StatusOK, store.Snapshot())
}

// Open handles POST /api/v1/cart/open.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	store.OpenCart()
	common.JSON(w, http.StatusOK, store.Snapshot())
}

// Close handles POST /api/v1/cart/close.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	store.CloseCart()
	common.JSON(w, http.StatusOK, store.Snapshot())
}
