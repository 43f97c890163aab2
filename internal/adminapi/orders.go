package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/internal/order"
	"github.com/openmallhq/openmall/internal/webserver"
)

type salesSummary struct {
	Orders       int64   `json:"orders"`
	PaidOrders   int64   `json:"paid_orders"`
	Delivered    int64   `json:"delivered_orders"`
	Revenue      float64 `json:"revenue"`
	AverageOrder float64 `json:"average_order"`
	MedianOrder  float64 `json:"median_order"`
}

func registerOrderRoutes() {
	webserver.AdminGET("/orders", listOrders)
	webserver.AdminGET("/orders/export", exportOrders)
	webserver.AdminGET("/orders/stats", orderStats)
	webserver.AdminGET("/orders/:id", getOrderDetail)
	webserver.AdminPUT("/orders/:id/deliver", deliverOrder)
}

// parseTimeRange reads the optional from/to query filters. The values are
// accepted in any common date format.
func parseTimeRange(c echo.Context) (from, to *time.Time, err error) {
	if v := c.QueryParam("from"); v != "" {
		t, perr := dateparse.ParseAny(v)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid from date %q", v)
		}
		from = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, perr := dateparse.ParseAny(v)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid to date %q", v)
		}
		to = &t
	}
	return from, to, nil
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	from, to, err := parseTimeRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	orders, total, err := webCtx.Orders().ListAll(c.Request().Context(), from, to, page, pageSize)
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, orders, total, page, pageSize)
}

func getOrderDetail(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	claims := webserver.CurrentClaims(c)
	detail, err := webCtx.Orders().Get(c.Request().Context(), id,
		order.Identity{UserID: claims.UserID, IsAdmin: true})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, detail)
}

func deliverOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	delivered, err := webCtx.Orders().MarkDelivered(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	logOpr(c, "deliver_order", fmt.Sprintf("order %d", id))
	return ok(c, delivered)
}

// exportOrders streams the filtered orders as an xlsx workbook.
func exportOrders(c echo.Context) error {
	from, to, err := parseTimeRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	db := GetDB(c).Model(&domain.Order{})
	if from != nil {
		db = db.Where("created_at >= ?", *from)
	}
	if to != nil {
		db = db.Where("created_at <= ?", *to)
	}
	var orders []domain.Order
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	f := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"ID", "User", "Total", "Items", "Shipping", "Tax", "Paid", "Delivered", "Created"}
	for i, h := range headers {
		f.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for i, o := range orders {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%d", o.ID))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("%d", o.UserID))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), o.TotalPrice)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), o.ItemsPrice)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), o.ShippingPrice)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), o.TaxPrice)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), o.IsPaid)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), o.IsDelivered)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), o.CreatedAt.Format(time.RFC3339))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response().Writer)
}

// orderStats reports revenue and order value distribution over the
// filtered range. Revenue counts paid orders only.
func orderStats(c echo.Context) error {
	from, to, err := parseTimeRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	db := GetDB(c).Model(&domain.Order{})
	if from != nil {
		db = db.Where("created_at >= ?", *from)
	}
	if to != nil {
		db = db.Where("created_at <= ?", *to)
	}
	var orders []domain.Order
	if err := db.Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	summary := salesSummary{Orders: int64(len(orders))}
	var paidTotals []float64
	for _, o := range orders {
		if o.IsPaid {
			summary.PaidOrders++
			paidTotals = append(paidTotals, o.TotalPrice)
		}
		if o.IsDelivered {
			summary.Delivered++
		}
	}
	if len(paidTotals) > 0 {
		summary.Revenue, _ = stats.Sum(paidTotals)
		summary.AverageOrder, _ = stats.Mean(paidTotals)
		summary.MedianOrder, _ = stats.Median(paidTotals)
	}
	return ok(c, summary)
}
