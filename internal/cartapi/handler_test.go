package cartapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/norvia/storefront-api/internal/cartapi"
	"github.com/norvia/storefront-api/internal/shopify"
)

type fakeCommerce struct {
	mu    sync.Mutex
	calls map[string]int
	cart  *shopify.Cart
	err   error
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		calls: map[string]int{},
		cart:  &shopify.Cart{ID: "cart-1", TotalQuantity: 1},
	}
}

func (f *fakeCommerce) record(op string) (*shopify.Cart, error) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
	return f.cart, f.err
}

func (f *fakeCommerce) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeCommerce) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0
	for _, n := range f.calls {
		sum += n
	}
	return sum
}

func (f *fakeCommerce) CreateCart(context.Context, string, int) (*shopify.Cart, error) {
	return f.record("create")
}

func (f *fakeCommerce) AddToCart(context.Context, string, string, int) (*shopify.Cart, error) {
	return f.record("add")
}

func (f *fakeCommerce) UpdateCartLine(context.Context, string, string, int) (*shopify.Cart, error) {
	return f.record("update")
}

func (f *fakeCommerce) RemoveFromCart(context.Context, string, []string) (*shopify.Cart, error) {
	return f.record("remove")
}

func (f *fakeCommerce) GetCart(context.Context, string) (*shopify.Cart, error) {
	return f.record("get")
}

func newHandler(commerce *fakeCommerce) *cartapi.Handler {
	return &cartapi.Handler{
		Commerce: commerce,
		Logger:   zerolog.Nop(),
		Validate: validator.New(),
	}
}

func dispatch(t *testing.T, h *cartapi.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shopify/cart", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Dispatch(rec, req)
	return rec
}

func TestDispatchCompleteness(t *testing.T) {
	cases := []struct {
		action string
		body   string
	}{
		{"create", `{"action":"create","variantId":"variant-1","quantity":2}`},
		{"add", `{"action":"add","cartId":"cart-1","variantId":"variant-1","quantity":1}`},
		{"update", `{"action":"update","cartId":"cart-1","lineId":"line-1","quantity":0}`},
		{"remove", `{"action":"remove","cartId":"cart-1","lineIds":["line-1"]}`},
		{"get", `{"action":"get","cartId":"cart-1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			commerce := newFakeCommerce()
			rec := dispatch(t, newHandler(commerce), tc.body)

			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, 1, commerce.count(tc.action), "exactly one %s call", tc.action)
			require.Equal(t, 1, commerce.total(), "no other client call")

			var resp struct {
				Cart shopify.Cart `json:"cart"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, "cart-1", resp.Cart.ID)
		})
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	commerce := newFakeCommerce()
	rec := dispatch(t, newHandler(commerce), `{"action":"checkout"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, commerce.total(), "no remote call for an invalid action")
	require.Contains(t, rec.Body.String(), "Invalid action")
}

func TestDispatchMalformedBody(t *testing.T) {
	commerce := newFakeCommerce()
	rec := dispatch(t, newHandler(commerce), `{"action":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, commerce.total())
}

func TestDispatchMissingAction(t *testing.T) {
	commerce := newFakeCommerce()
	rec := dispatch(t, newHandler(commerce), `{"cartId":"cart-1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, commerce.total())
}

func TestDispatchSwallowsErrorDetail(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.err = &shopify.UserError{Message: "The specified cart does not exist."}
	rec := dispatch(t, newHandler(commerce), `{"action":"get","cartId":"cart-stale"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Failed to process cart operation")
	require.NotContains(t, rec.Body.String(), "does not exist", "platform detail must not leak")
}

func TestDispatchDefaultsQuantity(t *testing.T) {
	commerce := newFakeCommerce()
	rec := dispatch(t, newHandler(commerce), `{"action":"create","variantId":"variant-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, commerce.count("create"))
}
