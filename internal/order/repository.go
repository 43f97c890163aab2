package order

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/openmallhq/openmall/internal/domain"
)

// Repository handles database operations for placed orders.
type Repository interface {
	// Create inserts the order and its items in one transaction
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its items
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// GetByIdempotencyKey retrieves the order created for a client key
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)

	// Save persists lifecycle flag changes
	Save(ctx context.Context, order *domain.Order) error

	// ListByUser returns a user's orders, newest first
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)

	// ListAll returns orders for operational review with optional created-at
	// bounds and pagination
	ListAll(ctx context.Context, from, to *time.Time, page, pageSize int) ([]domain.Order, int64, error)
}

// GormRepository is the GORM implementation of Repository
type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	var order domain.Order
	err := r.DB.WithContext(ctx).Preload("Items").
		Where("idempotency_key = ?", key).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepository) Save(ctx context.Context, order *domain.Order) error {
	return r.DB.WithContext(ctx).Omit("Items").Save(order).Error
}

func (r *GormRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *GormRepository) ListAll(ctx context.Context, from, to *time.Time, page, pageSize int) ([]domain.Order, int64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Order{})
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []domain.Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}
