package domain

import "time"

// ShippingAddress is the destination collected at the shipping step. All
// four fields are required before the checkout flow may advance.
type ShippingAddress struct {
	Address    string `gorm:"size:256" json:"address" form:"address"`
	City       string `gorm:"size:128" json:"city" form:"city"`
	PostalCode string `gorm:"size:32" json:"postal_code" form:"postal_code"`
	Country    string `gorm:"size:64" json:"country" form:"country"`
}

// Complete reports whether every required address field is present.
func (a ShippingAddress) Complete() bool {
	return a.Address != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// PaymentResult is the capture record reported by the external gateway.
type PaymentResult struct {
	TransactionID string `gorm:"size:128" json:"transaction_id"`
	Status        string `gorm:"size:64" json:"status"`
	PayerEmail    string `gorm:"size:200" json:"payer_email"`
}

// Order is a frozen snapshot of a cart at placement time. Prices are derived
// once at creation and never recomputed; the paid and delivered transitions
// are the only permitted post-creation mutations.
type Order struct {
	ID              int64           `gorm:"primaryKey" json:"id,string"`
	UserID          int64           `gorm:"index" json:"user_id,string"`
	IdempotencyKey  string          `gorm:"size:64;uniqueIndex" json:"-"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	PaymentMethod   string          `gorm:"size:64" json:"payment_method"`
	ItemsPrice      float64         `json:"items_price"`
	ShippingPrice   float64         `json:"shipping_price"`
	TaxPrice        float64         `json:"tax_price"`
	TotalPrice      float64         `json:"total_price"`
	IsPaid          bool            `gorm:"index" json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at"`
	PaymentResult   PaymentResult   `gorm:"embedded;embeddedPrefix:pay_" json:"payment_result"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "mall_order"
}

// OrderItem is one frozen line of a placed order.
type OrderItem struct {
	ID        int64   `gorm:"primaryKey" json:"id,string"`
	OrderID   int64   `gorm:"index" json:"order_id,string"`
	ProductID int64   `json:"product_id,string"`
	Name      string  `gorm:"size:200" json:"name"`
	Image     string  `gorm:"size:1024" json:"image"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "mall_order_item"
}
