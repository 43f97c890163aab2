// Package api implements the customer-facing REST surface: catalog,
// account, cart, checkout and orders.
package api

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/openmallhq/openmall/internal/app"
	"github.com/openmallhq/openmall/internal/order"
	"github.com/openmallhq/openmall/internal/webserver"
)

var webCtx app.WebContext

// Register wires all customer routes. Must run after webserver.Init.
func Register(ac app.WebContext) {
	webCtx = ac
	registerUserRoutes()
	registerProductRoutes()
	registerCartRoutes()
	registerOrderRoutes()
}

func ok(c echo.Context, data interface{}) error {
	return webserver.OK(c, data)
}

func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	return webserver.Fail(c, status, code, msg, detail)
}

func failErr(c echo.Context, err error) error {
	return webserver.FailErr(c, err)
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return webserver.Paged(c, items, total, page, pageSize)
}

func parsePagination(c echo.Context) (int, int) {
	return webserver.ParsePagination(c)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return webserver.ParseIDParam(c, name)
}

func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetDB(c)
}

// identity returns the verified caller for protected routes.
func identity(c echo.Context) order.Identity {
	claims := webserver.CurrentClaims(c)
	if claims == nil {
		return order.Identity{}
	}
	return order.Identity{UserID: claims.UserID, IsAdmin: claims.IsAdmin}
}
