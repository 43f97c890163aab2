package domain

import "time"

// Product is a catalog item. Price and CountInStock are the live values;
// carts and orders keep their own snapshots taken at add-to-cart time.
type Product struct {
	ID           int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	Name         string    `gorm:"index" json:"name" form:"name"`
	Image        string    `gorm:"size:1024" json:"image" form:"image"`
	Brand        string    `gorm:"size:128" json:"brand" form:"brand"`
	Category     string    `gorm:"size:128;index" json:"category" form:"category"`
	Description  string    `gorm:"type:text" json:"description" form:"description"`
	Price        float64   `json:"price" form:"price"`
	CountInStock int       `json:"count_in_stock" form:"count_in_stock"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"num_reviews"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

// ProductReview is a per-user rating; one review per user per product.
type ProductReview struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	ProductID int64     `gorm:"index;uniqueIndex:idx_review_product_user" json:"product_id,string"`
	UserID    int64     `gorm:"uniqueIndex:idx_review_product_user" json:"user_id,string"`
	Name      string    `gorm:"size:128" json:"name"`
	Rating    float64   `json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (ProductReview) TableName() string {
	return "product_review"
}
