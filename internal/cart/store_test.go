package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/norvia/storefront-api/internal/cart"
	"github.com/norvia/storefront-api/internal/shopify"
)

type fakeCommerce struct {
	mu    sync.Mutex
	calls map[string]int

	createResp *shopify.Cart
	createErr  error
	addResp    *shopify.Cart
	addErr     error
	updateResp *shopify.Cart
	updateErr  error
	removeResp *shopify.Cart
	removeErr  error
	getResp    *shopify.Cart
	getErr     error
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{calls: map[string]int{}}
}

func (f *fakeCommerce) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeCommerce) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeCommerce) CreateCart(_ context.Context, _ string, _ int) (*shopify.Cart, error) {
	f.record("create")
	return f.createResp, f.createErr
}

func (f *fakeCommerce) AddToCart(_ context.Context, _, _ string, _ int) (*shopify.Cart, error) {
	f.record("add")
	return f.addResp, f.addErr
}

func (f *fakeCommerce) UpdateCartLine(_ context.Context, _, _ string, _ int) (*shopify.Cart, error) {
	f.record("update")
	return f.updateResp, f.updateErr
}

func (f *fakeCommerce) RemoveFromCart(_ context.Context, _ string, _ []string) (*shopify.Cart, error) {
	f.record("remove")
	return f.removeResp, f.removeErr
}

func (f *fakeCommerce) GetCart(_ context.Context, _ string) (*shopify.Cart, error) {
	f.record("get")
	return f.getResp, f.getErr
}

func sampleCart(id string, quantity int, lines ...shopify.Line) *shopify.Cart {
	return &shopify.Cart{
		ID:            id,
		CheckoutURL:   "https://shop.example/checkout/" + id,
		TotalQuantity: quantity,
		Cost: shopify.CartCost{
			SubtotalAmount: shopify.Money{Amount: "57.90", CurrencyCode: "EUR"},
			TotalAmount:    shopify.Money{Amount: "57.90", CurrencyCode: "EUR"},
		},
		Lines: lines,
	}
}

func newIDStore(t *testing.T) (cart.RedisIDStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cart.RedisIDStore{Client: client, TTL: time.Hour}, mr
}

func newStore(t *testing.T, commerce cart.Commerce) (*cart.Store, cart.RedisIDStore) {
	t.Helper()
	ids, _ := newIDStore(t)
	return cart.NewStore("session-1", commerce, ids, zerolog.Nop()), ids
}

func TestInitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	commerce := newFakeCommerce()
	commerce.getResp = sampleCart("cart-1", 2)
	store, ids := newStore(t, commerce)
	require.NoError(t, ids.Set(ctx, "session-1", "cart-1"))

	store.Initialize(ctx)
	first := store.Snapshot()
	require.NotNil(t, first.Cart)
	require.Equal(t, "cart-1", first.Cart.ID)

	store.Initialize(ctx)
	second := store.Snapshot()
	require.Equal(t, first.Cart, second.Cart)

	persisted, err := ids.Get(ctx, "session-1")
	require.NoError(t, err)
	require.Equal(t, "cart-1", persisted)
}

func TestInitializeClearsStaleID(t *testing.T) {
	ctx := context.Background()
	commerce := newFakeCommerce() // GetCart returns nil: id no longer resolves
	store, ids := newStore(t, commerce)
	require.NoError(t, ids.Set(ctx, "session-1", "cart-stale"))

	store.Initialize(ctx)

	snap := store.Snapshot()
	require.Nil(t, snap.Cart)
	persisted, err := ids.Get(ctx, "session-1")
	require.NoError(t, err)
	require.Empty(t, persisted)
}

func TestInitializeClearsIDOnFetchError(t *testing.T) {
	ctx := context.Background()
	commerce := newFakeCommerce()
	commerce.getErr = errors.New("boom")
	store, ids := newStore(t, commerce)
	require.NoError(t, ids.Set(ctx, "session-1", "cart-1"))

	store.Initialize(ctx)

	require.Nil(t, store.Snapshot().Cart)
	persisted, err := ids.Get(ctx, "session-1")
	require.NoError(t, err)
	require.Empty(t, persisted)
}

func TestInitializeWithoutPersistedID(t *testing.T) {
	commerce := newFakeCommerce()
	store, _ := newStore(t, commerce)

	store.Initialize(context.Background())

	require.Nil(t, store.Snapshot().Cart)
	require.Zero(t, commerce.count("get"))
}

func TestAddItemCreatesThenReusesCart(t *testing.T) {
	ctx := context.Background()
	commerce := newFakeCommerce()
	commerce.createResp = sampleCart("cart-1", 2)
	commerce.addResp = sampleCart("cart-1", 5)
	store, ids := newStore(t, commerce)

	require.NoError(t, store.AddItem(ctx, "variant-1", 2))
	snap := store.Snapshot()
	require.Equal(t, 2, snap.Cart.TotalQuantity)
	require.True(t, snap.IsOpen)
	require.False(t, snap.IsLoading)
	require.Equal(t, 1, commerce.count("create"))

	persisted, err := ids.Get(ctx, "session-1")
	require.NoError(t, err)
	require.Equal(t, "cart-1", persisted)

	require.NoError(t, store.AddItem(ctx, "variant-1", 3))
	require.Equal(t, 1, commerce.count("create"))
	require.Equal(t, 1, commerce.count("add"))
	require.Equal(t, 5, store.Snapshot().Cart.TotalQuantity)

	persisted, err = ids.Get(ctx, "session-1")
	require.NoError(t, err)
	require.Equal(t, "cart-1", persisted, "identifier must not change across adds")
}

func TestAddItemFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	commerce := newFakeCommerce()
	commerce.createErr = &shopify.UserError{Message: "variant out of stock"}
	store, ids := newStore(t, commerce)

	err := store.AddItem(ctx, "variant-1", 1)
	require.Error(t, err)
	require.True(t, shopify.IsUserError(err))

	snap := store.Snapshot()
	require.Nil(t, snap.Cart)
	require.False(t, snap.IsOpen)
	require.False(t, snap.IsLoading, "loading flag must clear on failure")

	persisted, getErr := ids.Get(ctx, "session-1")
	require.NoError(t, getErr)
	require.Empty(t, persisted)
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.createResp = sampleCart("cart-1", 1)
	store, _ := newStore(t, commerce)

	require.NoError(t, store.AddItem(context.Background(), "variant-1", 0))
	require.Equal(t, 1, store.Snapshot().Cart.TotalQuantity)
}

func TestUpdateItemZeroQuantityRemovesLine(t *testing.T) {
	ctx := context.Background()
	line := shopify.Line{ID: "line-1", Quantity: 2}
	commerce := newFakeCommerce()
	commerce.getResp = sampleCart("cart-1", 2, line)
	commerce.updateResp = sampleCart("cart-1", 0) // platform removed the line
	store, ids := newStore(t, commerce)
	require.NoError(t, ids.Set(ctx, "session-1", "cart-1"))
	store.Initialize(ctx)
	require.Len(t, store.Snapshot().Cart.Lines, 1)

	require.NoError(t, store.UpdateItem(ctx, "line-1", 0))

	snap := store.Snapshot()
	for _, l := range snap.Cart.Lines {
		require.NotEqual(t, "line-1", l.ID)
	}
	require.Equal(t, 0, snap.Cart.TotalQuantity)
}

func TestUpdateItemWithoutCartReturnsErrNoCart(t *testing.T) {
	commerce := newFakeCommerce()
	store, _ := newStore(t, commerce)

	err := store.UpdateItem(context.Background(), "line-1", 3)
	require.ErrorIs(t, err, cart.ErrNoCart)
	require.Zero(t, commerce.count("update"))
	require.Nil(t, store.Snapshot().Cart)
	require.False(t, store.Snapshot().IsLoading)
}

func TestRemoveItemWithoutCartReturnsErrNoCart(t *testing.T) {
	commerce := newFakeCommerce()
	store, _ := newStore(t, commerce)

	err := store.RemoveItem(context.Background(), []string{"line-1"})
	require.ErrorIs(t, err, cart.ErrNoCart)
	require.Zero(t, commerce.count("remove"))
}

func TestRemoveItemReplacesCart(t *testing.T) {
	ctx := context.Background()
	commerce := newFakeCommerce()
	commerce.removeResp = sampleCart("cart-1", 0)
	store, ids := newStore(t, commerce)
	require.NoError(t, ids.Set(ctx, "session-1", "cart-1"))

	require.NoError(t, store.RemoveItem(ctx, []string{"line-1"}))
	require.Equal(t, 1, commerce.count("remove"))
	require.NotNil(t, store.Snapshot().Cart)
	require.Empty(t, store.Snapshot().Cart.Lines)
}

func TestVisibilityTogglesLeaveCartAlone(t *testing.T) {
	ctx := context.Background()
	commerce := newFakeCommerce()
	commerce.createResp = sampleCart("cart-1", 1)
	store, _ := newStore(t, commerce)
	require.NoError(t, store.AddItem(ctx, "variant-1", 1))

	before := store.Snapshot()
	require.True(t, before.IsOpen)

	store.CloseCart()
	mid := store.Snapshot()
	require.False(t, mid.IsOpen)
	require.Equal(t, before.Cart, mid.Cart)
	require.False(t, mid.IsLoading)

	store.OpenCart()
	after := store.Snapshot()
	require.True(t, after.IsOpen)
	require.Equal(t, before.Cart, after.Cart)
}

func TestSuccessfulAddAlwaysOpensCart(t *testing.T) {
	ctx := context.Background()
	commerce := newFakeCommerce()
	commerce.createResp = sampleCart("cart-1", 1)
	commerce.addResp = sampleCart("cart-1", 2)
	store, _ := newStore(t, commerce)

	require.NoError(t, store.AddItem(ctx, "variant-1", 1))
	store.CloseCart()
	require.False(t, store.Snapshot().IsOpen)

	require.NoError(t, store.AddItem(ctx, "variant-1", 1))
	require.True(t, store.Snapshot().IsOpen)
}

func TestManagerReturnsSameStorePerSession(t *testing.T) {
	ids, _ := newIDStore(t)
	mgr := cart.NewManager(cart.ManagerConfig{
		Commerce: newFakeCommerce(),
		IDs:      ids,
		Logger:   zerolog.Nop(),
		TTL:      time.Minute,
	})

	a := mgr.Session("session-a")
	b := mgr.Session("session-a")
	c := mgr.Session("session-b")
	require.Same(t, a, b)
	require.NotSame(t, a, c)
	require.Equal(t, 2, mgr.Len())
}
