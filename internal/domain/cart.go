package domain

import "time"

// CartLine is a (product, quantity, snapshot) tuple. Name, Image, Price and
// CountInStock are copied from the product when the line is added and never
// re-read from the live record afterwards.
type CartLine struct {
	ProductID    int64     `json:"product_id,string"`
	Name         string    `json:"name"`
	Image        string    `json:"image"`
	Price        float64   `json:"price"`
	Qty          int       `json:"qty"`
	CountInStock int       `json:"count_in_stock"`
	AddedAt      time.Time `json:"added_at"`
}

// Cart holds one user's pending purchase. Lines keep insertion order for
// stable display. Persisted across sessions until cleared after placement.
type Cart struct {
	UserID          int64            `json:"user_id,string"`
	Lines           []CartLine       `json:"lines"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	PaymentMethod   string           `json:"payment_method,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Line returns the line for a product, nil when absent.
func (c *Cart) Line(productID int64) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

func (c *Cart) Empty() bool { return len(c.Lines) == 0 }
