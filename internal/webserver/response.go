package webserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/openmallhq/openmall/internal/errs"
)

// WebRestResult is the uniform response envelope.
type WebRestResult struct {
	Code   string      `json:"code"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
	Detail interface{} `json:"detail,omitempty"`
}

type PagedData struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, WebRestResult{Code: "OK", Msg: "success", Data: data})
}

func Fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	return c.JSON(status, WebRestResult{Code: code, Msg: msg, Detail: detail})
}

func Paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, WebRestResult{
		Code: "OK",
		Msg:  "success",
		Data: PagedData{Items: items, Total: total, Page: page, PageSize: pageSize},
	})
}

// FailErr maps the service error taxonomy to an HTTP status and code.
func FailErr(c echo.Context, err error) error {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return Fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errs.KindNotFound:
		return Fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errs.KindAuthentication:
		return Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
	case errs.KindAuthorization:
		return Fail(c, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errs.KindConflict:
		return Fail(c, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		return Fail(c, http.StatusInternalServerError, "SERVER_ERROR", "Internal server error", err.Error())
	}
}

// ParsePagination reads page/page_size query params with sane bounds.
func ParsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

// ParseIDParam reads an int64 path parameter.
func ParseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
