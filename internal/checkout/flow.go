package checkout

import (
	"context"

	"go.uber.org/zap"

	"github.com/openmallhq/openmall/internal/cart"
	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/errs"
	"github.com/openmallhq/openmall/internal/order"
	"github.com/openmallhq/openmall/internal/payment"
	"github.com/openmallhq/openmall/internal/pricing"
)

// Flow performs the order-creation and payment side effects of checkout.
type Flow struct {
	carts   *cart.Service
	orders  *order.Service
	gateway payment.Gateway
}

func NewFlow(carts *cart.Service, orders *order.Service, gateway payment.Gateway) *Flow {
	return &Flow{carts: carts, orders: orders, gateway: gateway}
}

// PlaceOrder recomputes the quote from the current cart contents, submits
// one atomic creation to the order service and clears the cart on success.
// idempotencyKey is client-generated so a double submit or network retry
// lands on the same order.
func (f *Flow) PlaceOrder(ctx context.Context, userID int64, idempotencyKey string) (*domain.Order, error) {
	// A duplicate submit arrives after the first success already cleared
	// the cart. The key has to win over cart validation so the retry gets
	// the original order back instead of a cart-is-empty rejection.
	if idempotencyKey != "" {
		if existing, err := f.orders.FindByIdempotencyKey(ctx, idempotencyKey); err == nil {
			return existing, nil
		}
	}

	c, err := f.carts.Get(userID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, errs.Validation("cart is empty")
	}
	if c.ShippingAddress == nil || !c.ShippingAddress.Complete() {
		return nil, errs.Validation("incomplete shipping address")
	}
	if !domain.ValidCountry(c.ShippingAddress.Country) {
		return nil, errs.Validation("unknown country %q", c.ShippingAddress.Country)
	}
	if c.PaymentMethod == "" {
		return nil, errs.Validation("missing payment method")
	}

	// Never trust a previously cached total.
	quote, err := pricing.FromCart(c)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Price:     line.Price,
			Qty:       line.Qty,
		})
	}

	placed, err := f.orders.Create(ctx, userID, items, *c.ShippingAddress, c.PaymentMethod, quote, idempotencyKey)
	if err != nil {
		return nil, err
	}

	if err := f.carts.Clear(userID); err != nil {
		// The order exists; a stale cart is recoverable.
		zap.L().Warn("failed to clear cart after order placement",
			zap.Int64("user_id", userID),
			zap.Int64("order_id", placed.ID),
			zap.Error(err))
	}
	return placed, nil
}

// SubmitPayment validates the widget confirmation through the gateway and
// marks the order paid. Already-paid orders are returned as-is, so a retry
// after a lost response has no further effect.
func (f *Flow) SubmitPayment(ctx context.Context, orderID int64, caller order.Identity, conf payment.Confirmation) (*domain.Order, error) {
	o, err := f.orders.Get(ctx, orderID, caller)
	if err != nil {
		return nil, err
	}
	if o.IsPaid {
		return o, nil
	}

	result, err := f.gateway.Capture(ctx, o.ID, o.TotalPrice, conf)
	if err != nil {
		return nil, err
	}
	return f.orders.MarkPaid(ctx, o.ID, result)
}
