package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/norvia/storefront-api/internal/obs"
)

// Client is the typed boundary to the Storefront GraphQL API. It performs
// no retries; retry policy, if any, belongs to the caller.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   zerolog.Logger
}

// Config groups Client construction parameters.
type Config struct {
	// StoreDomain is the myshopify host, e.g. "example.myshopify.com".
	StoreDomain string
	// AccessToken is the public-scoped storefront access token.
	AccessToken string
	// APIVersion selects the Storefront API version, e.g. "2024-01".
	APIVersion string
	// Endpoint overrides the endpoint derived from StoreDomain and
	// APIVersion. Optional.
	Endpoint string
	// HTTPClient overrides the default instrumented client. Optional.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// NewClient constructs a Client.
func NewClient(cfg Config) (*Client, error) {
	domain := strings.TrimSpace(cfg.StoreDomain)
	token := strings.TrimSpace(cfg.AccessToken)
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if token == "" || (domain == "" && endpoint == "") {
		return nil, ErrNotConfigured
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = "2024-01"
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s/api/%s/graphql.json", domain, version)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     httpClient,
		logger:   cfg.Logger,
	}, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// do posts one GraphQL document and decodes the data payload into dst.
// Top-level errors are normalised into a UserError carrying the first
// reported message.
func (c *Client) do(ctx context.Context, op, query string, variables map[string]any, dst any) error {
	start := time.Now()
	defer func() {
		if obs.StorefrontCallLatency != nil {
			obs.StorefrontCallLatency.WithLabelValues(op).Observe(obs.DurationMillis(time.Since(start)))
		}
	}()

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("shopify: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("shopify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("shopify: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("shopify: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("shopify: unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("shopify: decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		c.logger.Error().Str("message", envelope.Errors[0].Message).Msg("storefront api error")
		return &UserError{Message: envelope.Errors[0].Message}
	}
	if dst != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, dst); err != nil {
			return fmt.Errorf("shopify: decode data: %w", err)
		}
	}
	return nil
}

// Ping exercises the API with a minimal shop query. Used by readiness
// probes.
func (c *Client) Ping(ctx context.Context) error {
	var data struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	return c.do(ctx, "getShop", shopQuery, nil, &data)
}

// GetProduct looks up one product by handle. A handle the platform does not
// know yields (nil, nil), not an error.
func (c *Client) GetProduct(ctx context.Context, handle string) (*Product, error) {
	var data struct {
		Product *productWire `json:"product"`
	}
	if err := c.do(ctx, "getProduct", productQuery, map[string]any{"handle": handle}, &data); err != nil {
		return nil, err
	}
	return data.Product.product(), nil
}

// GetProducts returns the first 20 products of the catalog.
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	var data struct {
		Products struct {
			Edges []struct {
				Node productWire `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := c.do(ctx, "getProducts", productsQuery, nil, &data); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(data.Products.Edges))
	for _, edge := range data.Products.Edges {
		node := edge.Node
		out = append(out, *node.product())
	}
	return out, nil
}

// CreateCart creates a cart with a single initial line.
func (c *Client) CreateCart(ctx context.Context, variantID string, quantity int) (*Cart, error) {
	if strings.TrimSpace(variantID) == "" || quantity < 1 {
		return nil, errors.New("shopify: create cart requires a variant and quantity >= 1")
	}
	var data struct {
		CartCreate struct {
			Cart       *cartWire       `json:"cart"`
			UserErrors []userErrorWire `json:"userErrors"`
		} `json:"cartCreate"`
	}
	variables := map[string]any{
		"input": map[string]any{
			"lines": []map[string]any{{"merchandiseId": variantID, "quantity": quantity}},
		},
	}
	if err := c.do(ctx, "cartCreate", cartCreateMutation, variables, &data); err != nil {
		return nil, err
	}
	if err := firstUserError(data.CartCreate.UserErrors); err != nil {
		return nil, err
	}
	return data.CartCreate.Cart.cart(), nil
}

// AddToCart appends or merges one line into an existing cart. A stale cart
// id surfaces as a platform-reported UserError.
func (c *Client) AddToCart(ctx context.Context, cartID, variantID string, quantity int) (*Cart, error) {
	var data struct {
		CartLinesAdd struct {
			Cart       *cartWire       `json:"cart"`
			UserErrors []userErrorWire `json:"userErrors"`
		} `json:"cartLinesAdd"`
	}
	variables := map[string]any{
		"cartId": cartID,
		"lines":  []map[string]any{{"merchandiseId": variantID, "quantity": quantity}},
	}
	if err := c.do(ctx, "cartLinesAdd", cartLinesAddMutation, variables, &data); err != nil {
		return nil, err
	}
	if err := firstUserError(data.CartLinesAdd.UserErrors); err != nil {
		return nil, err
	}
	return data.CartLinesAdd.Cart.cart(), nil
}

// UpdateCartLine sets a line's quantity. The platform interprets quantity 0
// as removal of the line.
func (c *Client) UpdateCartLine(ctx context.Context, cartID, lineID string, quantity int) (*Cart, error) {
	var data struct {
		CartLinesUpdate struct {
			Cart       *cartWire       `json:"cart"`
			UserErrors []userErrorWire `json:"userErrors"`
		} `json:"cartLinesUpdate"`
	}
	variables := map[string]any{
		"cartId": cartID,
		"lines":  []map[string]any{{"id": lineID, "quantity": quantity}},
	}
	if err := c.do(ctx, "cartLinesUpdate", cartLinesUpdateMutation, variables, &data); err != nil {
		return nil, err
	}
	if err := firstUserError(data.CartLinesUpdate.UserErrors); err != nil {
		return nil, err
	}
	return data.CartLinesUpdate.Cart.cart(), nil
}

// RemoveFromCart removes a set of lines by id. An id not present in the
// cart is a platform-defined no-op.
func (c *Client) RemoveFromCart(ctx context.Context, cartID string, lineIDs []string) (*Cart, error) {
	var data struct {
		CartLinesRemove struct {
			Cart       *cartWire       `json:"cart"`
			UserErrors []userErrorWire `json:"userErrors"`
		} `json:"cartLinesRemove"`
	}
	variables := map[string]any{"cartId": cartID, "lineIds": lineIDs}
	if err := c.do(ctx, "cartLinesRemove", cartLinesRemoveMutation, variables, &data); err != nil {
		return nil, err
	}
	if err := firstUserError(data.CartLinesRemove.UserErrors); err != nil {
		return nil, err
	}
	return data.CartLinesRemove.Cart.cart(), nil
}

// GetCart returns the current cart snapshot, or (nil, nil) when the id no
// longer resolves.
func (c *Client) GetCart(ctx context.Context, cartID string) (*Cart, error) {
	var data struct {
		Cart *cartWire `json:"cart"`
	}
	if err := c.do(ctx, "getCart", cartQuery, map[string]any{"cartId": cartID}, &data); err != nil {
		return nil, err
	}
	return data.Cart.cart(), nil
}
