package order

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/errs"
	"github.com/openmallhq/openmall/internal/pricing"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return NewService(NewGormRepository(db), nil)
}

func testAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Address: "22 MG Road", City: "Bengaluru", PostalCode: "560001", Country: "India",
	}
}

func testItems() []domain.OrderItem {
	return []domain.OrderItem{
		{ProductID: 1, Name: "widget", Price: 2000, Qty: 2},
		{ProductID: 2, Name: "gadget", Price: 1500, Qty: 1},
	}
}

func testQuote(t *testing.T) pricing.Quote {
	t.Helper()
	q, err := pricing.Compute([]pricing.Line{{Price: 2000, Qty: 2}, {Price: 1500, Qty: 1}})
	require.NoError(t, err)
	return q
}

func TestCreateFreezesSnapshot(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	order, err := s.Create(ctx, 7, testItems(), testAddress(), "paypal", testQuote(t), "key-1")
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.False(t, order.CreatedAt.IsZero())
	assert.Equal(t, 5500.0, order.ItemsPrice)
	assert.Equal(t, 5000.0, order.ShippingPrice)
	assert.Equal(t, 990.0, order.TaxPrice)
	assert.Equal(t, 11490.0, order.TotalPrice)
	require.Len(t, order.Items, 2)
	assert.False(t, order.IsPaid)
	assert.False(t, order.IsDelivered)

	got, err := s.Get(ctx, order.ID, Identity{UserID: 7})
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "widget", got.Items[0].Name)
}

func TestCreateEmptyItemsFails(t *testing.T) {
	s := newTestService(t)
	_, err := s.Create(context.Background(), 7, nil, testAddress(), "paypal", pricing.Quote{}, "")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestCreateIncompleteAddressFails(t *testing.T) {
	s := newTestService(t)
	addr := testAddress()
	addr.PostalCode = ""
	_, err := s.Create(context.Background(), 7, testItems(), addr, "paypal", testQuote(t), "")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestCreateIdempotencyKeyReplay(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	first, err := s.Create(ctx, 7, testItems(), testAddress(), "paypal", testQuote(t), "retry-key")
	require.NoError(t, err)
	second, err := s.Create(ctx, 7, testItems(), testAddress(), "paypal", testQuote(t), "retry-key")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "retry returns the original order")

	// The retry after success carries nothing but the key: the cart was
	// consumed, so the replay must win before the empty-items check.
	third, err := s.Create(ctx, 7, nil, domain.ShippingAddress{}, "", pricing.Quote{}, "retry-key")
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)

	_, total, err := s.ListAll(ctx, nil, nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	found, err := s.FindByIdempotencyKey(ctx, "retry-key")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = s.FindByIdempotencyKey(ctx, "never-used")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestGetAuthorization(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	order, err := s.Create(ctx, 7, testItems(), testAddress(), "paypal", testQuote(t), "")
	require.NoError(t, err)

	_, err = s.Get(ctx, order.ID, Identity{UserID: 8})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err), "stranger sees not-found, not the order")

	got, err := s.Get(ctx, order.ID, Identity{UserID: 99, IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = s.Get(ctx, 123456, Identity{UserID: 7})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestMarkPaid(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.MarkPaid(ctx, 424242, domain.PaymentResult{TransactionID: "t1"})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	order, err := s.Create(ctx, 7, testItems(), testAddress(), "paypal", testQuote(t), "")
	require.NoError(t, err)

	paid, err := s.MarkPaid(ctx, order.ID, domain.PaymentResult{
		TransactionID: "t1", Status: "COMPLETED", PayerEmail: "buyer@example.com",
	})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "t1", paid.PaymentResult.TransactionID)

	firstPaidAt := *paid.PaidAt
	again, err := s.MarkPaid(ctx, order.ID, domain.PaymentResult{TransactionID: "t2"})
	require.NoError(t, err)
	assert.Equal(t, "t1", again.PaymentResult.TransactionID, "re-pay does not overwrite")
	assert.True(t, again.PaidAt.Equal(firstPaidAt))
}

func TestMarkDeliveredIndependentOfPaid(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.MarkDelivered(ctx, 424242)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	order, err := s.Create(ctx, 7, testItems(), testAddress(), "paypal", testQuote(t), "")
	require.NoError(t, err)

	delivered, err := s.MarkDelivered(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)
	assert.False(t, delivered.IsPaid, "delivery does not imply payment")
}

func TestListByUserAndAll(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, 7, testItems(), testAddress(), "paypal", testQuote(t), "a")
	require.NoError(t, err)
	_, err = s.Create(ctx, 8, testItems(), testAddress(), "paypal", testQuote(t), "b")
	require.NoError(t, err)

	mine, err := s.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.EqualValues(t, 7, mine[0].UserID)

	all, total, err := s.ListAll(ctx, nil, nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	future := time.Now().Add(time.Hour)
	none, total, err := s.ListAll(ctx, &future, nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, none)
}
