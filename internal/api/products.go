package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/webserver"
	"github.com/openmallhq/openmall/pkg/common"
)

type reviewPayload struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

func registerProductRoutes() {
	webserver.PubGET("/products", listProducts)
	webserver.PubGET("/products/top", topProducts)
	webserver.PubGET("/products/:id", getProduct)
	webserver.ApiPOST("/products/:id/reviews", createProductReview)
}

// listProducts is public; supports keyword search over name and pagination.
func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Product{})
	if keyword := strings.TrimSpace(c.QueryParam("keyword")); keyword != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}
	if category := strings.TrimSpace(c.QueryParam("category")); category != "" {
		db = db.Where("category = ?", category)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func topProducts(c echo.Context) error {
	var rows []domain.Product
	if err := GetDB(c).Order("rating DESC").Limit(3).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return ok(c, rows)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var reviews []domain.ProductReview
	GetDB(c).Where("product_id = ?", id).Order("created_at DESC").Find(&reviews)
	return ok(c, map[string]interface{}{"product": p, "reviews": reviews})
}

// createProductReview adds one review per user per product and refreshes
// the aggregate rating.
func createProductReview(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload reviewPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review", nil)
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Rating must be between 1 and 5", nil)
	}

	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	claims := webserver.CurrentClaims(c)
	var dup domain.ProductReview
	if err := GetDB(c).Where("product_id = ? AND user_id = ?", id, claims.UserID).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "ALREADY_REVIEWED", "Product already reviewed", nil)
	}

	review := domain.ProductReview{
		ID:        common.UUIDint64(),
		ProductID: id,
		UserID:    claims.UserID,
		Name:      claims.Name,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
		CreatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&review).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create review", err.Error())
	}

	// Refresh the aggregate from all reviews.
	var agg struct {
		Count int64
		Avg   float64
	}
	GetDB(c).Model(&domain.ProductReview{}).
		Select("COUNT(*) as count, AVG(rating) as avg").
		Where("product_id = ?", id).
		Scan(&agg)
	GetDB(c).Model(&domain.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rating":      agg.Avg,
		"num_reviews": agg.Count,
		"updated_at":  time.Now(),
	})

	return ok(c, review)
}
