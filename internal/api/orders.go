package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/random"

	"github.com/openmallhq/openmall/internal/checkout"
	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/payment"
	"github.com/openmallhq/openmall/internal/webserver"
)

type placeOrderPayload struct {
	IdempotencyKey string `json:"idempotency_key"`
}

func registerOrderRoutes() {
	webserver.PubGET("/checkout/:step", checkoutStep)
	webserver.ApiPOST("/orders", placeOrder)
	webserver.ApiGET("/orders/mine", listMyOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPUT("/orders/:id/pay", payOrder)
}

// checkoutStep is the guard endpoint the storefront asks before rendering
// a checkout screen. It is public: anonymous callers get redirected to
// login for the protected steps instead of a 401.
func checkoutStep(c echo.Context) error {
	step := checkout.Step(c.Param("step"))

	session := checkout.Session{}
	if claims := webserver.ParseBearer(c); claims != nil {
		session.Authenticated = true
		if cart, err := webCtx.Carts().Get(claims.UserID); err == nil {
			session.Cart = cart
		}
	}
	return ok(c, checkout.EnterStep(step, session))
}

func placeOrder(c echo.Context) error {
	caller := identity(c)
	var payload placeOrderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order request", nil)
	}
	// Clients without retry logic get a fresh key per submission.
	if payload.IdempotencyKey == "" {
		payload.IdempotencyKey = random.String(24)
	}

	order, err := webCtx.Flow().PlaceOrder(c.Request().Context(), caller.UserID, payload.IdempotencyKey)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, order)
}

func listMyOrders(c echo.Context) error {
	caller := identity(c)
	orders, err := webCtx.Orders().ListByUser(c.Request().Context(), caller.UserID)
	if err != nil {
		return failErr(c, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return ok(c, orders)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	order, err := webCtx.Orders().Get(c.Request().Context(), id, identity(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, order)
}

func payOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var conf payment.Confirmation
	if err := c.Bind(&conf); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse payment confirmation", nil)
	}

	order, err := webCtx.Flow().SubmitPayment(c.Request().Context(), id, identity(c), conf)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, order)
}
