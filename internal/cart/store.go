package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/norvia/storefront-api/internal/shopify"
)

// Commerce is the slice of the storefront client the store depends on.
type Commerce interface {
	CreateCart(ctx context.Context, variantID string, quantity int) (*shopify.Cart, error)
	AddToCart(ctx context.Context, cartID, variantID string, quantity int) (*shopify.Cart, error)
	UpdateCartLine(ctx context.Context, cartID, lineID string, quantity int) (*shopify.Cart, error)
	RemoveFromCart(ctx context.Context, cartID string, lineIDs []string) (*shopify.Cart, error)
	GetCart(ctx context.Context, cartID string) (*shopify.Cart, error)
}

// IDStore persists the single durable piece of per-session state: the
// platform-issued cart identifier. Absence means no active cart.
type IDStore interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, cartID string) error
	Clear(ctx context.Context, sessionID string) error
}

// ErrNoCart is returned by mutations that require an existing cart. The
// HTTP boundary treats it as a no-op rather than a failure.
var ErrNoCart = errors.New("cart: no active cart for session")

// Snapshot is the externally visible state of a session's cart.
type Snapshot struct {
	Cart      *shopify.Cart `json:"cart"`
	IsOpen    bool          `json:"isOpen"`
	IsLoading bool          `json:"isLoading"`
}

// Store is the single source of truth for one session's cart. The in-memory
// cart is always a mirror of the last successful platform response; nothing
// is derived locally. Mutations are serialized through a per-session
// single-flight mutex, so a later call waits instead of racing an earlier
// response.
type Store struct {
	sessionID string
	commerce  Commerce
	ids       IDStore
	logger    zerolog.Logger

	opMu sync.Mutex // serializes remote mutations

	mu        sync.Mutex // guards the fields below
	cart      *shopify.Cart
	isOpen    bool
	isLoading bool
}

// NewStore constructs a Store for one session. Callers obtain stores
// through a Manager rather than constructing them ad hoc.
func NewStore(sessionID string, commerce Commerce, ids IDStore, logger zerolog.Logger) *Store {
	return &Store{
		sessionID: sessionID,
		commerce:  commerce,
		ids:       ids,
		logger:    logger.With().Str("session_id", sessionID).Logger(),
	}
}

// Snapshot returns the current visible state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Cart: s.cart, IsOpen: s.isOpen, IsLoading: s.isLoading}
}

// OpenCart reveals the cart UI. Pure visibility; never touches cart state.
func (s *Store) OpenCart() {
	s.mu.Lock()
	s.isOpen = true
	s.mu.Unlock()
}

// CloseCart hides the cart UI.
func (s *Store) CloseCart() {
	s.mu.Lock()
	s.isOpen = false
	s.mu.Unlock()
}

// Initialize rehydrates the session's cart from its persisted identifier.
// It absorbs every failure: a fetch error or an identifier that no longer
// resolves clears the persisted id and leaves the session cart-less.
func (s *Store) Initialize(ctx context.Context) {
	cartID, err := s.ids.Get(ctx, s.sessionID)
	if err != nil {
		s.logger.Error().Err(err).Msg("read persisted cart id")
		return
	}
	if cartID == "" {
		return
	}

	cart, err := s.commerce.GetCart(ctx, cartID)
	if err != nil || cart == nil {
		if err != nil {
			s.logger.Warn().Err(err).Msg("rehydrate cart")
		}
		if clearErr := s.ids.Clear(ctx, s.sessionID); clearErr != nil {
			s.logger.Error().Err(clearErr).Msg("clear stale cart id")
		}
		return
	}

	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
}

// AddItem adds quantity of a variant, creating the cart lazily on first
// use. On success the returned cart replaces the in-memory copy, its
// identifier is persisted, and the cart UI is forced open. On failure the
// visible state is left unchanged. The loading flag is cleared on every
// path.
func (s *Store) AddItem(ctx context.Context, variantID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	cartID, err := s.ids.Get(ctx, s.sessionID)
	if err != nil {
		return err
	}

	var cart *shopify.Cart
	if cartID == "" {
		cart, err = s.commerce.CreateCart(ctx, variantID, quantity)
	} else {
		cart, err = s.commerce.AddToCart(ctx, cartID, variantID, quantity)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("variant_id", variantID).Msg("add item")
		return err
	}
	if cart == nil {
		return errors.New("cart: platform returned no cart")
	}

	if err := s.ids.Set(ctx, s.sessionID, cart.ID); err != nil {
		s.logger.Error().Err(err).Msg("persist cart id")
	}

	s.mu.Lock()
	s.cart = cart
	s.isOpen = true
	s.mu.Unlock()
	return nil
}

// UpdateItem sets a line's quantity. Quantity 0 is a removal request, not
// a resting state. Without an active cart it returns ErrNoCart and leaves
// all state untouched.
func (s *Store) UpdateItem(ctx context.Context, lineID string, quantity int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	cartID, err := s.ids.Get(ctx, s.sessionID)
	if err != nil {
		return err
	}
	if cartID == "" {
		return ErrNoCart
	}

	cart, err := s.commerce.UpdateCartLine(ctx, cartID, lineID, quantity)
	if err != nil {
		s.logger.Warn().Err(err).Str("line_id", lineID).Msg("update item")
		return err
	}
	s.replaceCart(cart)
	return nil
}

// RemoveItem removes one or more lines by id. Without an active cart it
// returns ErrNoCart and leaves all state untouched.
func (s *Store) RemoveItem(ctx context.Context, lineIDs []string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	cartID, err := s.ids.Get(ctx, s.sessionID)
	if err != nil {
		return err
	}
	if cartID == "" {
		return ErrNoCart
	}

	cart, err := s.commerce.RemoveFromCart(ctx, cartID, lineIDs)
	if err != nil {
		s.logger.Warn().Err(err).Msg("remove items")
		return err
	}
	s.replaceCart(cart)
	return nil
}

func (s *Store) replaceCart(cart *shopify.Cart) {
	if cart == nil {
		return
	}
	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.isLoading = v
	s.mu.Unlock()
}

// normalizeSessionID guards against header/cookie whitespace slipping into
// Redis keys.
func normalizeSessionID(id string) string {
	return strings.TrimSpace(id)
}
