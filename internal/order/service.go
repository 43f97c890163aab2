// Package order owns the server-side order lifecycle: creation freezes a
// cart snapshot with its derived prices, and the paid and delivered
// transitions are the only mutations afterwards.
package order

import (
	"context"
	"errors"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/errs"
	"github.com/openmallhq/openmall/internal/pricing"
	"github.com/openmallhq/openmall/pkg/common"
	"github.com/openmallhq/openmall/pkg/metrics"
)

// Event topics published on the application bus.
const (
	TopicOrderPlaced = "order.placed"
	TopicOrderPaid   = "order.paid"
)

// Identity is the requesting caller, used for the owner-or-admin rule.
type Identity struct {
	UserID  int64
	IsAdmin bool
}

type Service struct {
	repo Repository
	bus  evbus.Bus
}

// NewService creates the lifecycle service. bus may be nil when no
// subscribers are wired (tests).
func NewService(repo Repository, bus evbus.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// Create persists a frozen order snapshot. items must be non-empty and the
// price fields are taken as computed by the caller immediately beforehand.
// When idempotencyKey matches a previously created order, that order is
// returned instead of creating a duplicate, so client retries are safe.
func (s *Service) Create(
	ctx context.Context,
	userID int64,
	items []domain.OrderItem,
	address domain.ShippingAddress,
	method string,
	quote pricing.Quote,
	idempotencyKey string,
) (*domain.Order, error) {
	// The key must be resolved before any validation: a duplicate submit
	// arrives after the first success consumed the cart, and it still has
	// to land on the original order rather than a validation error.
	if idempotencyKey != "" {
		if existing, err := s.repo.GetByIdempotencyKey(ctx, idempotencyKey); err == nil {
			zap.L().Info("order creation replayed",
				zap.Int64("order_id", existing.ID),
				zap.String("idempotency_key", idempotencyKey))
			return existing, nil
		}
	} else {
		idempotencyKey = common.UUID()
	}

	if len(items) == 0 {
		return nil, errs.Validation("order has no items")
	}
	if !address.Complete() {
		return nil, errs.Validation("incomplete shipping address")
	}
	if method == "" {
		return nil, errs.Validation("missing payment method")
	}

	order := &domain.Order{
		ID:              common.UUIDint64(),
		UserID:          userID,
		IdempotencyKey:  idempotencyKey,
		ShippingAddress: address,
		PaymentMethod:   method,
		ItemsPrice:      quote.ItemsPrice,
		ShippingPrice:   quote.ShippingPrice,
		TaxPrice:        quote.TaxPrice,
		TotalPrice:      quote.TotalPrice,
		CreatedAt:       time.Now(),
	}
	for _, item := range items {
		item.ID = common.UUIDint64()
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}

	if err := s.repo.Create(ctx, order); err != nil {
		// A concurrent retry may have won the unique-key race.
		if existing, lookupErr := s.repo.GetByIdempotencyKey(ctx, idempotencyKey); lookupErr == nil {
			return existing, nil
		}
		return nil, errs.Wrap(errs.KindUnknown, err, "create order")
	}

	metrics.IncrCounter("orders_placed", 1)
	s.publish(TopicOrderPlaced, order)
	zap.L().Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.Float64("total", order.TotalPrice))
	return order, nil
}

// FindByIdempotencyKey returns the order previously created for a client
// key, NotFound when the key has never been used.
func (s *Service) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	order, err := s.repo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("no order for idempotency key")
		}
		return nil, errs.Wrap(errs.KindUnknown, err, "query order")
	}
	return order, nil
}

// Get returns an order visible to the caller. Unknown ids and orders owned
// by someone else both report NotFound so existence is not leaked.
func (s *Service) Get(ctx context.Context, id int64, caller Identity) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("order %d not found", id)
		}
		return nil, errs.Wrap(errs.KindUnknown, err, "query order")
	}
	if order.UserID != caller.UserID && !caller.IsAdmin {
		return nil, errs.NotFound("order %d not found", id)
	}
	return order, nil
}

// MarkPaid records the gateway capture. Re-marking an already paid order
// returns it unchanged, which makes payment submission retries harmless.
func (s *Service) MarkPaid(ctx context.Context, id int64, result domain.PaymentResult) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("order %d not found", id)
		}
		return nil, errs.Wrap(errs.KindUnknown, err, "query order")
	}
	if order.IsPaid {
		return order, nil
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = result
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, errs.Wrap(errs.KindUnknown, err, "save order")
	}

	metrics.IncrCounter("orders_paid", 1)
	s.publish(TopicOrderPaid, order)
	zap.L().Info("order paid",
		zap.Int64("order_id", order.ID),
		zap.String("transaction_id", result.TransactionID))
	return order, nil
}

// MarkDelivered flips the delivery flag. Payment status is deliberately not
// checked: paid and delivered are independent in this business flow. Admin
// restriction is enforced at the route boundary.
func (s *Service) MarkDelivered(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("order %d not found", id)
		}
		return nil, errs.Wrap(errs.KindUnknown, err, "query order")
	}
	if order.IsDelivered {
		return order, nil
	}

	now := time.Now()
	order.IsDelivered = true
	order.DeliveredAt = &now
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, errs.Wrap(errs.KindUnknown, err, "save order")
	}
	zap.L().Info("order delivered", zap.Int64("order_id", order.ID))
	return order, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context, from, to *time.Time, page, pageSize int) ([]domain.Order, int64, error) {
	return s.repo.ListAll(ctx, from, to, page, pageSize)
}

func (s *Service) publish(topic string, order *domain.Order) {
	if s.bus != nil {
		s.bus.Publish(topic, order)
	}
}
