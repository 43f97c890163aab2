// Package adminapi implements the back-office REST surface: catalog and
// user management, order fulfilment, exports and sales reporting. Every
// route requires the admin role claim.
package adminapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openmallhq/openmall/internal/app"
	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/webserver"
	"github.com/openmallhq/openmall/pkg/common"
)

var webCtx app.WebContext

// Register wires all admin routes. Must run after webserver.Init.
func Register(ac app.WebContext) {
	webCtx = ac
	registerProductRoutes()
	registerUserRoutes()
	registerOrderRoutes()
	registerMetricRoutes()
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

// logOpr records an administrative mutation for the audit trail.
func logOpr(c echo.Context, action, desc string) {
	claims := webserver.CurrentClaims(c)
	name := "unknown"
	if claims != nil {
		name = claims.Name
	}
	err := GetDB(c).Create(&domain.OprLog{
		ID:        common.UUIDint64(),
		OprName:   name,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}).Error
	if err != nil {
		zap.L().Error("failed to write operation log",
			zap.String("action", action), zap.Error(err))
	}
}
