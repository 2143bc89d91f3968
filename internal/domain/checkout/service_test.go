package checkout

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyhub/storefront/internal/domain/order"
	"github.com/toyhub/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID map[string]*product.Product
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

type mockGateway struct {
	lastReq *SessionRequest
	session *Session
	err     error
	calls   int
}

func (m *mockGateway) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	m.calls++
	m.lastReq = &req
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

// --- Helpers ---

func testConfig() Config {
	return Config{
		Currency:   "cad",
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
	}
}

func newProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductRepo{byID: byID}
}

// --- Tests ---

func TestBuildSession_EmptyItems(t *testing.T) {
	gw := &mockGateway{session: &Session{ID: "cs_1"}}
	svc := NewService(testConfig(), newProductRepo(), gw)

	_, err := svc.BuildSession(context.Background(), nil)

	require.ErrorIs(t, err, ErrEmptyItems)
	assert.Zero(t, gw.calls, "gateway must not be called for empty input")
}

func TestBuildSession_MinorUnits(t *testing.T) {
	p := product.Product{ID: "p1", Name: "Waffle Iron", Price: decimal.RequireFromString("9.99")}
	gw := &mockGateway{session: &Session{ID: "cs_1", URL: "https://pay.example/cs_1"}}
	svc := NewService(testConfig(), newProductRepo(p), gw)

	session, err := svc.BuildSession(context.Background(), []order.LineItem{
		{ProductID: "p1", Quantity: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	require.NotNil(t, gw.lastReq)
	require.Len(t, gw.lastReq.Items, 1)

	item := gw.lastReq.Items[0]
	assert.Equal(t, "Waffle Iron", item.Name)
	assert.Equal(t, "cad", item.Currency)
	assert.EqualValues(t, 999, item.UnitAmount)
	assert.EqualValues(t, 2, item.Quantity)
	assert.Equal(t, "https://shop.example/success", gw.lastReq.SuccessURL)
	assert.Equal(t, "https://shop.example/cancel", gw.lastReq.CancelURL)
}

func TestBuildSession_PreservesItemOrder(t *testing.T) {
	p1 := product.Product{ID: "p1", Name: "Widget", Price: decimal.RequireFromString("10.00")}
	p2 := product.Product{ID: "p2", Name: "Gadget", Price: decimal.RequireFromString("0.50")}
	gw := &mockGateway{session: &Session{ID: "cs_1"}}
	svc := NewService(testConfig(), newProductRepo(p1, p2), gw)

	_, err := svc.BuildSession(context.Background(), []order.LineItem{
		{ProductID: "p2", Quantity: 3},
		{ProductID: "p1", Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, gw.lastReq.Items, 2)
	assert.Equal(t, "Gadget", gw.lastReq.Items[0].Name)
	assert.EqualValues(t, 50, gw.lastReq.Items[0].UnitAmount)
	assert.Equal(t, "Widget", gw.lastReq.Items[1].Name)
	assert.EqualValues(t, 1000, gw.lastReq.Items[1].UnitAmount)
}

func TestBuildSession_UnknownProduct(t *testing.T) {
	gw := &mockGateway{session: &Session{ID: "cs_1"}}
	svc := NewService(testConfig(), newProductRepo(), gw)

	_, err := svc.BuildSession(context.Background(), []order.LineItem{
		{ProductID: "missing", Quantity: 1},
	})

	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Zero(t, gw.calls, "gateway must not be reached when a lookup fails")
}

func TestBuildSession_GatewayFailure(t *testing.T) {
	p := product.Product{ID: "p1", Name: "Widget", Price: decimal.RequireFromString("10.00")}
	gw := &mockGateway{err: errors.New("connection refused")}
	svc := NewService(testConfig(), newProductRepo(p), gw)

	_, err := svc.BuildSession(context.Background(), []order.LineItem{
		{ProductID: "p1", Quantity: 1},
	})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Contains(t, gwErr.Error(), "connection refused")
}
