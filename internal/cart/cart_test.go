package cart

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/errs"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store)
}

func testProduct(id int64, price float64, stock int) domain.Product {
	return domain.Product{
		ID:           id,
		Name:         "widget",
		Image:        "/images/widget.jpg",
		Price:        price,
		CountInStock: stock,
	}
}

func TestAddItemSnapshotsProduct(t *testing.T) {
	s := newTestService(t)
	p := testProduct(1, 2000, 5)

	cart, err := s.AddItem(7, p, 2)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)

	line := cart.Lines[0]
	assert.Equal(t, p.ID, line.ProductID)
	assert.Equal(t, p.Name, line.Name)
	assert.Equal(t, 2000.0, line.Price)
	assert.Equal(t, 5, line.CountInStock)
	assert.Equal(t, 2, line.Qty)
}

func TestAddItemLastWriteWins(t *testing.T) {
	s := newTestService(t)
	p := testProduct(1, 2000, 5)

	_, err := s.AddItem(7, p, 2)
	require.NoError(t, err)
	cart, err := s.AddItem(7, p, 3)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Qty, "quantity replaced, not summed")
}

func TestAddItemRejectsNonPositiveQty(t *testing.T) {
	s := newTestService(t)
	_, err := s.AddItem(7, testProduct(1, 100, 5), 0)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestAddItemKeepsInsertionOrder(t *testing.T) {
	s := newTestService(t)
	for i := int64(1); i <= 3; i++ {
		_, err := s.AddItem(7, testProduct(i, float64(i)*100, 5), 1)
		require.NoError(t, err)
	}
	cart, err := s.Get(7)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 3)
	for i, line := range cart.Lines {
		assert.Equal(t, int64(i+1), line.ProductID)
	}
}

func TestRemoveItemIdempotent(t *testing.T) {
	s := newTestService(t)
	_, err := s.AddItem(7, testProduct(1, 100, 5), 1)
	require.NoError(t, err)

	cart, err := s.RemoveItem(7, 999)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1, "absent product leaves cart unchanged")

	cart, err = s.RemoveItem(7, 1)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	cart, err = s.RemoveItem(7, 1)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartPersistsAcrossStoreReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cart.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	s := NewService(store)
	_, err = s.AddItem(7, testProduct(1, 100, 5), 2)
	require.NoError(t, err)
	_, err = s.SetShippingAddress(7, domain.ShippingAddress{
		Address: "22 MG Road", City: "Bengaluru", PostalCode: "560001", Country: "India",
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()
	cart, err := NewService(store).Get(7)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	require.NotNil(t, cart.ShippingAddress)
	assert.Equal(t, "Bengaluru", cart.ShippingAddress.City)
}

func TestClearKeepsAddressAndMethod(t *testing.T) {
	s := newTestService(t)
	_, err := s.AddItem(7, testProduct(1, 100, 5), 1)
	require.NoError(t, err)
	_, err = s.SetShippingAddress(7, domain.ShippingAddress{
		Address: "22 MG Road", City: "Bengaluru", PostalCode: "560001", Country: "India",
	})
	require.NoError(t, err)
	_, err = s.SetPaymentMethod(7, "paypal")
	require.NoError(t, err)

	require.NoError(t, s.Clear(7))

	cart, err := s.Get(7)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.NotNil(t, cart.ShippingAddress)
	assert.Equal(t, "paypal", cart.PaymentMethod)
}

func TestPurgeStale(t *testing.T) {
	s := newTestService(t)
	_, err := s.AddItem(7, testProduct(1, 100, 5), 1)
	require.NoError(t, err)

	purged, err := s.PurgeStale(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, purged, "fresh cart survives")

	purged, err = s.PurgeStale(0)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	cart, err := s.Get(7)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}
