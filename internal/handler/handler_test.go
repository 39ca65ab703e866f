package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joralabs/jora-api/internal/auth"
	"github.com/joralabs/jora-api/internal/domain/b2b"
	"github.com/joralabs/jora-api/internal/domain/cart"
	"github.com/joralabs/jora-api/internal/domain/catalog"
	"github.com/joralabs/jora-api/internal/domain/coupon"
	"github.com/joralabs/jora-api/internal/domain/order"
	"github.com/joralabs/jora-api/internal/domain/pricing"
	"github.com/joralabs/jora-api/internal/domain/user"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byEmail map[string]*user.User
	created *user.User
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return user.ErrEmailTaken
	}
	m.created = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) UpdateRole(_ context.Context, _ string, _ user.Role) error {
	return nil
}

type mockAddressRepo struct {
	addresses []user.Address
}

func (m *mockAddressRepo) Create(_ context.Context, a *user.Address) error {
	a.ID = int64(len(m.addresses) + 1)
	m.addresses = append(m.addresses, *a)
	return nil
}

func (m *mockAddressRepo) ListByUser(_ context.Context, userID string) ([]user.Address, error) {
	var out []user.Address
	for _, a := range m.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAddressRepo) Get(_ context.Context, id int64, userID string) (*user.Address, error) {
	for _, a := range m.addresses {
		if a.ID == id && a.UserID == userID {
			return &a, nil
		}
	}
	return nil, user.ErrAddressNotFound
}

type mockProductRepo struct {
	products []catalog.Product
	bySlug   map[string]*catalog.Product
}

func (m *mockProductRepo) List(_ context.Context, _ catalog.ProductFilter) ([]catalog.Product, error) {
	return m.products, nil
}

func (m *mockProductRepo) GetBySlug(_ context.Context, slug string) (*catalog.Product, error) {
	p, ok := m.bySlug[slug]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, _ string) (*catalog.Product, error) {
	return nil, catalog.ErrNotFound
}

func (m *mockProductRepo) Create(_ context.Context, p *catalog.Product) error {
	m.products = append(m.products, *p)
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, _ string, _ catalog.ProductUpdate) (*catalog.Product, error) {
	return nil, catalog.ErrNotFound
}

func (m *mockProductRepo) Delete(_ context.Context, _ string) error {
	return catalog.ErrNotFound
}

type mockCategoryRepo struct {
	categories []catalog.Category
}

func (m *mockCategoryRepo) List(_ context.Context) ([]catalog.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryRepo) Create(_ context.Context, c *catalog.Category) error {
	c.ID = int64(len(m.categories) + 1)
	m.categories = append(m.categories, *c)
	return nil
}

type mockVariantRepo struct {
	snapshots map[int64]pricing.VariantSnapshot
}

func (m *mockVariantRepo) Snapshots(_ context.Context, ids []int64) (map[int64]pricing.VariantSnapshot, error) {
	out := make(map[int64]pricing.VariantSnapshot, len(ids))
	for _, id := range ids {
		if s, ok := m.snapshots[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (m *mockVariantRepo) Get(_ context.Context, id int64) (*catalog.Variant, error) {
	s, ok := m.snapshots[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &catalog.Variant{ID: s.VariantID, SKU: s.SKU, StockQuantity: s.Stock}, nil
}

type mockCartRepo struct{}

func (m *mockCartRepo) ListByUser(_ context.Context, _ string) ([]cart.Item, error) { return nil, nil }
func (m *mockCartRepo) Get(_ context.Context, _ int64, _ string) (*cart.Item, error) {
	return nil, cart.ErrItemNotFound
}
func (m *mockCartRepo) FindByVariant(_ context.Context, _ string, _ int64) (*cart.Item, error) {
	return nil, cart.ErrItemNotFound
}
func (m *mockCartRepo) Create(_ context.Context, item *cart.Item) error {
	item.ID = 1
	return nil
}
func (m *mockCartRepo) UpdateQuantity(_ context.Context, _ int64, _ string, _ int) (*cart.Item, error) {
	return nil, cart.ErrItemNotFound
}
func (m *mockCartRepo) Delete(_ context.Context, _ int64, _ string) error { return nil }
func (m *mockCartRepo) Clear(_ context.Context, _ string) error           { return nil }

type mockWishlistRepo struct{}

func (m *mockWishlistRepo) ListByUser(_ context.Context, _ string) ([]cart.WishlistItem, error) {
	return nil, nil
}
func (m *mockWishlistRepo) Add(_ context.Context, userID, productID string) (*cart.WishlistItem, error) {
	return &cart.WishlistItem{ID: 1, UserID: userID, ProductID: productID}, nil
}
func (m *mockWishlistRepo) Remove(_ context.Context, _ int64, _ string) error { return nil }

type mockCouponRepo struct {
	rule *coupon.Rule
}

func (m *mockCouponRepo) FindByCode(_ context.Context, _ string) (*coupon.Rule, error) {
	if m.rule == nil {
		return nil, coupon.ErrNotFound
	}
	return m.rule, nil
}

func (m *mockCouponRepo) IncrementUses(_ context.Context, _ string) error { return nil }

type mockOrderRepo struct {
	lastOrder *order.Order
	createErr error
	getOrder  *order.Order
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order, _ []pricing.StockDecrement) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastOrder = o
	return nil
}

func (m *mockOrderRepo) Get(_ context.Context, id, userID string) (*order.Order, error) {
	if m.getOrder != nil && m.getOrder.ID == id && m.getOrder.UserID == userID {
		return m.getOrder, nil
	}
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ string) ([]order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) CancelAndRestock(_ context.Context, _ *order.Order) error { return nil }

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status order.Status, tracking string) (*order.Order, error) {
	return &order.Order{ID: id, Status: status, TrackingNumber: tracking}, nil
}

type mockB2BRepo struct{}

func (m *mockB2BRepo) Create(_ context.Context, c *b2b.Customer) error {
	c.ID = 1
	return nil
}
func (m *mockB2BRepo) GetByUser(_ context.Context, _ string) (*b2b.Customer, error) {
	return nil, b2b.ErrNotFound
}
func (m *mockB2BRepo) GetByID(_ context.Context, _ int64) (*b2b.Customer, error) {
	return nil, b2b.ErrNotFound
}
func (m *mockB2BRepo) Approve(_ context.Context, id int64, tier decimal.Decimal) (*b2b.Customer, error) {
	return &b2b.Customer{ID: id, ApprovalStatus: b2b.StatusApproved, DiscountTier: tier}, nil
}

// --- Test fixture ---

type fixture struct {
	handler  http.Handler
	tokens   *auth.TokenManager
	users    *mockUserRepo
	orders   *mockOrderRepo
	coupons  *mockCouponRepo
	variants *mockVariantRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens := auth.NewTokenManager([]byte("test-secret"), "jora-api", "jora-storefront", time.Hour)
	users := &mockUserRepo{byEmail: map[string]*user.User{}}
	variants := &mockVariantRepo{snapshots: map[int64]pricing.VariantSnapshot{
		1: {
			VariantID:      1,
			SKU:            "KUR-IND-M-BLU",
			ProductID:      "p1",
			ProductName:    "Indigo Kurta",
			VariantDetails: "M / Indigo",
			BasePrice:      decimal.NewFromInt(1499),
			Stock:          10,
		},
	}}
	coupons := &mockCouponRepo{}
	orders := &mockOrderRepo{}

	products := &mockProductRepo{bySlug: map[string]*catalog.Product{
		"indigo-kurta": {
			ID:        "p1",
			Name:      "Indigo Kurta",
			Slug:      "indigo-kurta",
			BasePrice: decimal.NewFromInt(1499),
			IsActive:  true,
		},
	}}

	h := NewHandler(
		tokens,
		users,
		&mockAddressRepo{},
		products,
		&mockCategoryRepo{},
		cart.NewService(&mockCartRepo{}, variants),
		&mockWishlistRepo{},
		order.NewService(variants, coupons, orders),
		b2b.NewService(&mockB2BRepo{}),
	)

	return &fixture{
		handler:  h.Routes(),
		tokens:   tokens,
		users:    users,
		orders:   orders,
		coupons:  coupons,
		variants: variants,
	}
}

func (f *fixture) bearer(t *testing.T, userID string, role user.Role) string {
	t.Helper()
	token, err := f.tokens.Issue(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *fixture) do(t *testing.T, method, path, authHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeBodyJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

// --- Tests ---

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":      "Asha@Example.com",
		"password":   "longenough",
		"first_name": "Asha",
		"last_name":  "Rao",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeBodyJSON[userResponse](t, w)
	assert.Equal(t, "asha@example.com", created.Email)
	assert.Equal(t, user.RoleCustomer, created.Role)

	w = f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "longenough",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBodyJSON[tokenResponse](t, w)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	body := map[string]any{
		"email":      "asha@example.com",
		"password":   "longenough",
		"first_name": "Asha",
		"last_name":  "Rao",
	}

	w := f.do(t, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":      "a@b.com",
		"password":   "short",
		"first_name": "A",
		"last_name":  "B",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":      "asha@example.com",
		"password":   "longenough",
		"first_name": "Asha",
		"last_name":  "Rao",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products/indigo-kurta", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	p := decodeBodyJSON[productResponse](t, w)
	assert.Equal(t, "Indigo Kurta", p.Name)
	assert.Equal(t, 1499.0, p.BasePrice)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products/missing", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	body := decodeBodyJSON[errorBody](t, w)
	assert.Equal(t, "not_found", body.Error)
	assert.Equal(t, http.StatusNotFound, body.Status)
}

func TestCreateProduct_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	body := map[string]any{"name": "X", "slug": "x", "base_price": 100}

	w := f.do(t, http.MethodPost, "/products/", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/products/", f.bearer(t, "u1", user.RoleCustomer), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/products/", f.bearer(t, "a1", user.RoleAdmin), body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders/", f.bearer(t, "u1", user.RoleCustomer), map[string]any{
		"items": []map[string]any{{"variant_id": 1, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	o := decodeBodyJSON[orderResponse](t, w)
	assert.Equal(t, 1499.0, o.Subtotal)
	// 1499 > 1000: free shipping. Tax 18% of 1499 = 269.82.
	assert.Equal(t, 0.0, o.ShippingCost)
	assert.InDelta(t, 269.82, o.TaxAmount, 0.001)
	assert.InDelta(t, 1768.82, o.TotalAmount, 0.001)
	require.NotNil(t, f.orders.lastOrder)
	assert.Equal(t, "u1", f.orders.lastOrder.UserID)
}

func TestPlaceOrder_RequiresAuth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders/", "", map[string]any{
		"items": []map[string]any{{"variant_id": 1, "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlaceOrder_UnknownVariant(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders/", f.bearer(t, "u1", user.RoleCustomer), map[string]any{
		"items": []map[string]any{{"variant_id": 99, "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeBodyJSON[errorBody](t, w)
	assert.Equal(t, "variant_not_found", body.Error)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders/", f.bearer(t, "u1", user.RoleCustomer), map[string]any{
		"items": []map[string]any{{"variant_id": 1, "quantity": 100}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeBodyJSON[errorBody](t, w)
	assert.Equal(t, "insufficient_stock", body.Error)
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/orders/", f.bearer(t, "u1", user.RoleCustomer), map[string]any{
		"items": []map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatus_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	body := map[string]any{"status": "shipped", "tracking_number": "TRK1"}

	w := f.do(t, http.MethodPut, "/orders/o1/status", f.bearer(t, "u1", user.RoleCustomer), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPut, "/orders/o1/status", f.bearer(t, "a1", user.RoleAdmin), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	o := decodeBodyJSON[orderResponse](t, w)
	assert.Equal(t, order.StatusShipped, o.Status)
	assert.Equal(t, "TRK1", o.TrackingNumber)
}

func TestAddToCart(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/cart/add", f.bearer(t, "u1", user.RoleCustomer), map[string]any{
		"variant_id": 1,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	item := decodeBodyJSON[cartItemResponse](t, w)
	assert.Equal(t, int64(1), item.VariantID)
	assert.Equal(t, 2, item.Quantity)
}

func TestAddToCart_InsufficientStock(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/cart/add", f.bearer(t, "u1", user.RoleCustomer), map[string]any{
		"variant_id": 1,
		"quantity":   50,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidToken(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/cart/", "Bearer garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterB2B(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/b2b/register", f.bearer(t, "u1", user.RoleCustomer), map[string]any{
		"business_name": "Jora Traders",
		"gst_number":    "29ABCDE1234F1Z5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	c := decodeBodyJSON[b2bProfileResponse](t, w)
	assert.Equal(t, "pending", c.ApprovalStatus)
}

func TestUnknownFieldRejected(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "a@b.com",
		"password": "x",
		"extra":    true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
