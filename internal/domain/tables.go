package domain

var Tables = []interface{}{
	// System
	&User{},
	&OprLog{},
	// Catalog
	&Product{},
	&ProductReview{},
	// Orders
	&Order{},
	&OrderItem{},
}
