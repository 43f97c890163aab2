package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/webserver"
)

type cartItemPayload struct {
	ProductID int64 `json:"product_id,string"`
	Qty       int   `json:"qty"`
}

type shippingPayload struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type paymentMethodPayload struct {
	Method string `json:"method"`
}

func registerCartRoutes() {
	webserver.ApiGET("/cart", getCart)
	webserver.ApiPOST("/cart/items", addCartItem)
	webserver.ApiDELETE("/cart/items/:productId", removeCartItem)
	webserver.ApiPUT("/cart/shipping", setShippingAddress)
	webserver.ApiPUT("/cart/payment", setPaymentMethod)
}

func getCart(c echo.Context) error {
	caller := identity(c)
	cart, err := webCtx.Carts().Get(caller.UserID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, cart)
}

// addCartItem resolves the product from the catalog and snapshots it into
// the cart. The quantity is bounded by the live stock at add time.
func addCartItem(c echo.Context) error {
	caller := identity(c)
	var payload cartItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", nil)
	}
	if payload.Qty <= 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Quantity must be positive", nil)
	}

	var product domain.Product
	if err := GetDB(c).Where("id = ?", payload.ProductID).First(&product).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if product.CountInStock <= 0 {
		return fail(c, http.StatusConflict, "OUT_OF_STOCK", "Product is out of stock", nil)
	}
	if payload.Qty > product.CountInStock {
		payload.Qty = product.CountInStock
	}

	cart, err := webCtx.Carts().AddItem(caller.UserID, product, payload.Qty)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, cart)
}

func removeCartItem(c echo.Context) error {
	caller := identity(c)
	productID, err := parseIDParam(c, "productId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	cart, err := webCtx.Carts().RemoveItem(caller.UserID, productID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, cart)
}

func setShippingAddress(c echo.Context) error {
	caller := identity(c)
	var payload shippingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse shipping address", nil)
	}
	addr := domain.ShippingAddress{
		Address:    payload.Address,
		City:       payload.City,
		PostalCode: payload.PostalCode,
		Country:    payload.Country,
	}
	if !addr.Complete() {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "All address fields are required", nil)
	}
	if !domain.ValidCountry(addr.Country) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown country", addr.Country)
	}
	cart, err := webCtx.Carts().SetShippingAddress(caller.UserID, addr)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, cart)
}

func setPaymentMethod(c echo.Context) error {
	caller := identity(c)
	var payload paymentMethodPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse payment method", nil)
	}
	if payload.Method == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Payment method is required", nil)
	}
	cart, err := webCtx.Carts().SetPaymentMethod(caller.UserID, payload.Method)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, cart)
}
