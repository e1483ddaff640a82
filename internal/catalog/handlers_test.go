package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/norvia/storefront-api/internal/catalog"
	"github.com/norvia/storefront-api/internal/shopify"
)

type fakeSource struct {
	products     []shopify.Product
	err          error
	productCalls int
	listCalls    int
}

func (f *fakeSource) GetProduct(_ context.Context, handle string) (*shopify.Product, error) {
	f.productCalls++
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].Handle == handle {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetProducts(_ context.Context) ([]shopify.Product, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func sampleProduct() shopify.Product {
	return shopify.Product{
		ID:     "gid://shopify/Product/1",
		Handle: "gel-glove",
		Title:  "Norvia Gel Glove",
		MinPrice: shopify.Money{Amount: "39.95", CurrencyCode: "EUR"},
	}
}

func newCatalogRouter(t *testing.T, source *fakeSource) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := catalog.NewService(catalog.ServiceConfig{
		Source: source,
		Cache:  catalog.NewCache(client, time.Minute),
		Logger: zerolog.Nop(),
	})
	h := catalog.NewHandler(catalog.HandlerConfig{Service: svc, Logger: zerolog.Nop()})

	r := chi.NewRouter()
	r.Get("/api/v1/products", h.Products)
	r.Get("/api/v1/products/{handle}", h.ProductDetail)
	return r
}

func TestProductsList(t *testing.T) {
	source := &fakeSource{products: []shopify.Product{sampleProduct()}}
	router := newCatalogRouter(t, source)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Products []shopify.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Products, 1)
	require.Equal(t, "gel-glove", body.Products[0].Handle)
}

func TestProductsListServedFromCache(t *testing.T) {
	source := &fakeSource{products: []shopify.Product{sampleProduct()}}
	router := newCatalogRouter(t, source)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Equal(t, 1, source.listCalls)
}

func TestProductDetail(t *testing.T) {
	source := &fakeSource{products: []shopify.Product{sampleProduct()}}
	router := newCatalogRouter(t, source)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/gel-glove", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Product shopify.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Norvia Gel Glove", body.Product.Title)
}

func TestProductDetailNotFound(t *testing.T) {
	source := &fakeSource{products: []shopify.Product{sampleProduct()}}
	router := newCatalogRouter(t, source)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/unknown", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"Product not found"}`, rec.Body.String())
}

func TestProductDetailNotFoundIsNotCached(t *testing.T) {
	source := &fakeSource{}
	router := newCatalogRouter(t, source)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/unknown", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
	require.Equal(t, 2, source.productCalls)
}

func TestCatalogFailureHidesDetail(t *testing.T) {
	source := &fakeSource{err: context.DeadlineExceeded}
	router := newCatalogRouter(t, source)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Failed to load products"}`, rec.Body.String())
}
