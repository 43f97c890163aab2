package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/webserver"
	"github.com/openmallhq/openmall/pkg/common"
)

// productSortFields whitelists the sortable columns of the product list.
var productSortFields = map[string]string{
	"name":           "name",
	"price":          "price",
	"category":       "category",
	"count_in_stock": "count_in_stock",
	"rating":         "rating",
	"created_at":     "created_at",
}

type productExport struct {
	ID           int64   `csv:"id"`
	Name         string  `csv:"name"`
	Brand        string  `csv:"brand"`
	Category     string  `csv:"category"`
	Price        float64 `csv:"price"`
	CountInStock int     `csv:"count_in_stock"`
	Rating       float64 `csv:"rating"`
	NumReviews   int     `csv:"num_reviews"`
}

func registerProductRoutes() {
	webserver.AdminGET("/products", listProducts)
	webserver.AdminGET("/products/export", exportProducts)
	webserver.AdminGET("/products/:id", getProduct)
	webserver.AdminPOST("/products", createProduct)
	webserver.AdminPUT("/products/:id", updateProduct)
	webserver.AdminDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Product{})
	if keyword := strings.TrimSpace(c.QueryParam("keyword")); keyword != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}

	sortBy := "created_at DESC"
	if col, valid := productSortFields[c.QueryParam("sort")]; valid {
		dir := "ASC"
		if c.QueryParam("order") == "desc" {
			dir = "DESC"
		}
		sortBy = col + " " + dir
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	var rows []domain.Product
	if err := db.Order(sortBy).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
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
	return ok(c, p)
}

// createProduct inserts a draft with placeholder values that the admin
// then edits in place.
func createProduct(c echo.Context) error {
	product := domain.Product{
		ID:           common.UUIDint64(),
		Name:         "Sample name",
		Image:        "/images/sample.jpg",
		Brand:        "Sample brand",
		Category:     "Sample category",
		Description:  "Sample description",
		Price:        0,
		CountInStock: 0,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := GetDB(c).Create(&product).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	logOpr(c, "create_product", fmt.Sprintf("product %d", product.ID))
	return ok(c, product)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var product domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&product).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload domain.Product
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", nil)
	}
	if payload.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must not be negative", nil)
	}
	if payload.CountInStock < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Stock must not be negative", nil)
	}

	updates := map[string]interface{}{
		"name":           payload.Name,
		"image":          payload.Image,
		"brand":          payload.Brand,
		"category":       payload.Category,
		"description":    payload.Description,
		"price":          payload.Price,
		"count_in_stock": payload.CountInStock,
		"updated_at":     time.Now(),
	}
	if err := GetDB(c).Model(&product).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	logOpr(c, "update_product", fmt.Sprintf("product %d", id))
	GetDB(c).First(&product, id)
	return ok(c, product)
}

// deleteProduct removes the catalog item and its reviews. Placed orders
// keep their own snapshots and are unaffected.
func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var product domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&product).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err := GetDB(c).Delete(&domain.Product{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	GetDB(c).Where("product_id = ?", id).Delete(&domain.ProductReview{})
	logOpr(c, "delete_product", fmt.Sprintf("product %d %s", id, product.Name))
	return ok(c, nil)
}

func exportProducts(c echo.Context) error {
	var rows []domain.Product
	if err := GetDB(c).Order("created_at DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	out := make([]productExport, 0, len(rows))
	for _, p := range rows {
		out = append(out, productExport{
			ID:           p.ID,
			Name:         p.Name,
			Brand:        p.Brand,
			Category:     p.Category,
			Price:        p.Price,
			CountInStock: p.CountInStock,
			Rating:       p.Rating,
			NumReviews:   p.NumReviews,
		})
	}
	data, err := gocsv.MarshalString(&out)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to build export", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}
