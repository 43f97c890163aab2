// Package cart holds per-user cart state: line items with price and stock
// snapshots, shipping address and payment method. Every mutation persists
// the cart so it survives sessions.
package cart

import (
	"time"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/errs"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(userID int64) (*domain.Cart, error) {
	return s.store.Load(userID)
}

// AddItem puts a product in the cart with a snapshot of its current name,
// image, price and stock. Adding a product already present replaces the
// quantity, it does not accumulate. Quantity bounds against the stock
// snapshot are the caller's responsibility; zero and negative quantities
// are rejected here.
func (s *Service) AddItem(userID int64, product domain.Product, qty int) (*domain.Cart, error) {
	if qty <= 0 {
		return nil, errs.Validation("quantity must be positive, got %d", qty)
	}
	cart, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}
	if line := cart.Line(product.ID); line != nil {
		line.Qty = qty
	} else {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID:    product.ID,
			Name:         product.Name,
			Image:        product.Image,
			Price:        product.Price,
			Qty:          qty,
			CountInStock: product.CountInStock,
			AddedAt:      time.Now(),
		})
	}
	if err := s.store.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops a line; removing an absent product is a no-op.
func (s *Service) RemoveItem(userID, productID int64) (*domain.Cart, error) {
	cart, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}
	kept := cart.Lines[:0]
	for _, l := range cart.Lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(cart.Lines) {
		return cart, nil
	}
	cart.Lines = kept
	if err := s.store.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetShippingAddress overwrites the address. Completeness is validated by
// the checkout flow, not here.
func (s *Service) SetShippingAddress(userID int64, addr domain.ShippingAddress) (*domain.Cart, error) {
	cart, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}
	cart.ShippingAddress = &addr
	if err := s.store.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) SetPaymentMethod(userID int64, method string) (*domain.Cart, error) {
	cart, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}
	cart.PaymentMethod = method
	if err := s.store.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the line items after a successful order placement. The
// shipping address and payment method are kept for the next purchase.
func (s *Service) Clear(userID int64) error {
	cart, err := s.store.Load(userID)
	if err != nil {
		return err
	}
	cart.Lines = nil
	return s.store.Save(cart)
}

// PurgeStale delegates to the store, used by the cron job.
func (s *Service) PurgeStale(olderThan time.Duration) (int, error) {
	return s.store.PurgeStale(olderThan)
}
