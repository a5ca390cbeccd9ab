package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_shop/internal/cart"
	"github.com/fjod/go_shop/internal/catalog"
	"github.com/fjod/go_shop/internal/domain"
	shophttp "github.com/fjod/go_shop/internal/http"
	"github.com/fjod/go_shop/internal/orders"
	"github.com/fjod/go_shop/internal/service"
)

type testServer struct {
	router  http.Handler
	catalog *catalog.MemoryStore
	orders  *orders.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	catalogStore := catalog.NewMemoryStore()
	orderStore := orders.NewMemoryStore()
	registry := cart.NewRegistry(nil)

	productService := service.NewProductService(catalogStore, registry)
	orderService := service.NewOrderService(productService, orderStore, registry, nil)

	return &testServer{
		router:  shophttp.NewRouter(productService, orderService, 5*time.Second),
		catalog: catalogStore,
		orders:  orderStore,
	}
}

// do runs a request through the router, carrying the session cookie so a
// sequence of calls behaves like one browser session.
func (ts *testServer) do(t *testing.T, method, target, cookie string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "shop_session", Value: cookie})
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seedProduct(t *testing.T, name string, price float64, quantity int) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, Price: price, Quantity: quantity}
	require.NoError(t, ts.catalog.CreateProduct(t.Context(), p))
	return p
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "ok"}, decodeBody[map[string]string](t, rec))
}

func TestSessionCookieIssuedWhenMissing(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/cart/", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "shop_session", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestGetProducts(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "Echo Dot", 49.99, 30)
	ts.seedProduct(t, "Kindle", 109.99, 25)

	rec := ts.do(t, http.MethodGet, "/api/v1/products/", "s1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeBody[[]domain.Product](t, rec)
	require.Len(t, products, 2)
	assert.Equal(t, "Echo Dot", products[0].Name)
}

func TestGetAdminProducts_DescendingOrder(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "First", 1.00, 1)
	ts.seedProduct(t, "Second", 2.00, 2)

	rec := ts.do(t, http.MethodGet, "/api/v1/admin/products/", "s1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeBody[[]domain.Product](t, rec)
	require.Len(t, products, 2)
	assert.Equal(t, "Second", products[0].Name)
}

func TestGetProduct(t *testing.T) {
	ts := newTestServer(t)
	p := ts.seedProduct(t, "Echo Dot", 49.99, 30)

	rec := ts.do(t, http.MethodGet, "/api/v1/products/1", "s1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[domain.Product](t, rec)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Echo Dot", got.Name)
}

func TestGetProduct_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/products/99", "s1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[shophttp.ErrorResponse](t, rec).Code)
}

func TestGetProduct_InvalidID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/products/abc", "s1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_product_id", decodeBody[shophttp.ErrorResponse](t, rec).Code)
}

func TestCreateProduct(t *testing.T) {
	ts := newTestServer(t)

	model := service.ProductModel{Name: "Name", Description: "Desc", Details: "Details", Price: "1.01", Quantity: "1"}
	rec := ts.do(t, http.MethodPost, "/api/v1/admin/products/", "s1", model)

	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[domain.Product](t, rec)
	assert.Greater(t, created.ID, int64(0))
	assert.InDelta(t, 1.01, created.Price, 0.0001)
}

func TestCreateProduct_ValidationFailure(t *testing.T) {
	ts := newTestServer(t)

	model := service.ProductModel{Name: "", Price: "abc", Quantity: "0"}
	rec := ts.do(t, http.MethodPost, "/api/v1/admin/products/", "s1", model)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[shophttp.ErrorResponse](t, rec)
	assert.Equal(t, "invalid_product", resp.Code)
	assert.Contains(t, resp.Details, "product.MissingName")
	assert.Contains(t, resp.Details, "product.PriceNotANumber")
	assert.Contains(t, resp.Details, "product.QuantityNotGreaterThanZero")
}

func TestUpdateProduct(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "Old", 1.00, 1)

	model := service.ProductModel{Name: "New", Price: "2.50", Quantity: "7"}
	rec := ts.do(t, http.MethodPut, "/api/v1/admin/products/1", "s1", model)

	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[domain.Product](t, rec)
	assert.Equal(t, "New", updated.Name)
	assert.InDelta(t, 2.50, updated.Price, 0.0001)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	ts := newTestServer(t)

	model := service.ProductModel{Name: "New", Price: "2.50", Quantity: "7"}
	rec := ts.do(t, http.MethodPut, "/api/v1/admin/products/99", "s1", model)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "Echo Dot", 49.99, 30)

	rec := ts.do(t, http.MethodDelete, "/api/v1/admin/products/1", "s1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/products/1", "s1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct_RemovesFromCarts(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "Echo Dot", 49.99, 30)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", "s1", shophttp.AddItemRequestDTO{ProductID: 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/v1/admin/products/1", "s1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/cart/", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[shophttp.CartResponseDTO](t, rec).Empty)
}

func TestGetCart_Empty(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/cart/", "s1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[shophttp.CartResponseDTO](t, rec)
	assert.True(t, resp.Empty)
	assert.Zero(t, resp.TotalValue)
	assert.Zero(t, resp.AverageValue)
}

func TestAddItem(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "Echo Dot", 49.99, 30)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", "s1", shophttp.AddItemRequestDTO{ProductID: 1})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[shophttp.CartResponseDTO](t, rec)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 1, resp.Lines[0].Quantity)
	assert.InDelta(t, 49.99, resp.TotalValue, 0.0001)
}

func TestAddItem_MergesSameProduct(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "Echo Dot", 49.99, 30)

	ts.do(t, http.MethodPost, "/api/v1/cart/items", "s1", shophttp.AddItemRequestDTO{ProductID: 1})
	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", "s1", shophttp.AddItemRequestDTO{ProductID: 1})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[shophttp.CartResponseDTO](t, rec)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", "s1", shophttp.AddItemRequestDTO{ProductID: 99})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItem_InvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{not json"))
	req.AddCookie(&http.Cookie{Name: "shop_session", Value: "s1"})
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_SessionsAreIsolated(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "Echo Dot", 49.99, 30)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", "s1", shophttp.AddItemRequestDTO{ProductID: 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/cart/", "s2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[shophttp.CartResponseDTO](t, rec).Empty)
}

func TestRemoveItem_RemovesWholeLine(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "Echo Dot", 49.99, 30)

	ts.do(t, http.MethodPost, "/api/v1/cart/items", "s1", shophttp.AddItemRequestDTO{ProductID: 1})
	ts.do(t, http.MethodPost, "/api/v1/cart/items", "s1", shophttp.AddItemRequestDTO{ProductID: 1})

	rec := ts.do(t, http.MethodDelete, "/api/v1/cart/items/1", "s1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/cart/", "s1", nil)
	assert.True(t, decodeBody[shophttp.CartResponseDTO](t, rec).Empty)
}

func TestRemoveItem_AbsentProductIsNoOp(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodDelete, "/api/v1/cart/items/99", "s1", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/orders", "s1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart.empty", decodeBody[shophttp.ErrorResponse](t, rec).Code)
}

func TestCreateOrder_Lifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.seedProduct(t, "Echo Dot", 49.99, 30)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", "s1", shophttp.AddItemRequestDTO{ProductID: 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/orders", "s1", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	order := decodeBody[domain.Order](t, rec)
	assert.Greater(t, order.ID, int64(0))
	require.Len(t, order.Lines, 1)
	assert.InDelta(t, 49.99, order.TotalAmount(), 0.0001)

	// The cart is cleared and stock is reconciled.
	rec = ts.do(t, http.MethodGet, "/api/v1/cart/", "s1", nil)
	assert.True(t, decodeBody[shophttp.CartResponseDTO](t, rec).Empty)

	rec = ts.do(t, http.MethodGet, "/api/v1/products/1", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 29, decodeBody[domain.Product](t, rec).Quantity)
}
