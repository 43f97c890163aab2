package checkout

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openmallhq/openmall/internal/cart"
	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/errs"
	"github.com/openmallhq/openmall/internal/order"
	"github.com/openmallhq/openmall/internal/payment"
)

func newTestFlow(t *testing.T) (*Flow, *cart.Service, *order.Service) {
	t.Helper()

	store, err := cart.NewStore(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	carts := cart.NewService(store)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	orders := order.NewService(order.NewGormRepository(db), nil)

	return NewFlow(carts, orders, payment.SandboxGateway{}), carts, orders
}

func fillCart(t *testing.T, carts *cart.Service, userID int64) {
	t.Helper()
	_, err := carts.AddItem(userID, domain.Product{ID: 1, Name: "widget", Price: 2000, CountInStock: 9}, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(userID, domain.Product{ID: 2, Name: "gadget", Price: 1500, CountInStock: 4}, 1)
	require.NoError(t, err)
	_, err = carts.SetShippingAddress(userID, domain.ShippingAddress{
		Address: "22 MG Road", City: "Bengaluru", PostalCode: "560001", Country: "India",
	})
	require.NoError(t, err)
	_, err = carts.SetPaymentMethod(userID, "paypal")
	require.NoError(t, err)
}

func TestPlaceOrderComputesPricesAndClearsCart(t *testing.T) {
	flow, carts, _ := newTestFlow(t)
	ctx := context.Background()
	fillCart(t, carts, 7)

	placed, err := flow.PlaceOrder(ctx, 7, "key-1")
	require.NoError(t, err)
	assert.Equal(t, 5500.0, placed.ItemsPrice)
	assert.Equal(t, 5000.0, placed.ShippingPrice)
	assert.Equal(t, 990.0, placed.TaxPrice)
	assert.Equal(t, 11490.0, placed.TotalPrice)
	require.Len(t, placed.Items, 2)
	assert.Equal(t, "widget", placed.Items[0].Name)

	c, err := carts.Get(7)
	require.NoError(t, err)
	assert.True(t, c.Empty(), "cart cleared after placement")
}

func TestPlaceOrderValidations(t *testing.T) {
	flow, carts, _ := newTestFlow(t)
	ctx := context.Background()

	_, err := flow.PlaceOrder(ctx, 7, "")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err), "empty cart")

	_, err = carts.AddItem(7, domain.Product{ID: 1, Name: "widget", Price: 100, CountInStock: 3}, 1)
	require.NoError(t, err)
	_, err = flow.PlaceOrder(ctx, 7, "")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err), "missing address")

	_, err = carts.SetShippingAddress(7, domain.ShippingAddress{
		Address: "1 Main St", City: "Atlantis", PostalCode: "00000", Country: "Atlantis",
	})
	require.NoError(t, err)
	_, err = flow.PlaceOrder(ctx, 7, "")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err), "country outside the enumerated list")

	_, err = carts.SetShippingAddress(7, domain.ShippingAddress{
		Address: "22 MG Road", City: "Bengaluru", PostalCode: "560001", Country: "India",
	})
	require.NoError(t, err)
	_, err = flow.PlaceOrder(ctx, 7, "")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err), "missing payment method")
}

func TestPlaceOrderRetrySameKey(t *testing.T) {
	flow, carts, orders := newTestFlow(t)
	ctx := context.Background()
	fillCart(t, carts, 7)

	first, err := flow.PlaceOrder(ctx, 7, "double-click")
	require.NoError(t, err)

	// The first success cleared the cart. The duplicate submit must still
	// land on the original order, not an empty-cart rejection.
	c, err := carts.Get(7)
	require.NoError(t, err)
	require.True(t, c.Empty())

	second, err := flow.PlaceOrder(ctx, 7, "double-click")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalPrice, second.TotalPrice)

	_, total, err := orders.ListAll(ctx, nil, nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// A fresh key with a refilled cart creates a new order as usual.
	fillCart(t, carts, 7)
	third, err := flow.PlaceOrder(ctx, 7, "second-purchase")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestSubmitPayment(t *testing.T) {
	flow, carts, _ := newTestFlow(t)
	ctx := context.Background()
	fillCart(t, carts, 7)

	placed, err := flow.PlaceOrder(ctx, 7, "")
	require.NoError(t, err)

	caller := order.Identity{UserID: 7}
	conf := payment.Confirmation{TransactionID: "PAY-1", Status: "COMPLETED", PayerEmail: "buyer@example.com"}

	paid, err := flow.SubmitPayment(ctx, placed.ID, caller, conf)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "PAY-1", paid.PaymentResult.TransactionID)

	// Resubmission after a network retry is a no-op.
	again, err := flow.SubmitPayment(ctx, placed.ID, caller, payment.Confirmation{TransactionID: "PAY-2", Status: "COMPLETED"})
	require.NoError(t, err)
	assert.Equal(t, "PAY-1", again.PaymentResult.TransactionID)

	// Incomplete confirmations are rejected before touching the order.
	fillCart(t, carts, 8)
	unpaid, err := flow.PlaceOrder(ctx, 8, "")
	require.NoError(t, err)
	_, err = flow.SubmitPayment(ctx, unpaid.ID, order.Identity{UserID: 8}, payment.Confirmation{TransactionID: "PAY-3", Status: "PENDING"})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}
