package adminapi

import (
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/openmallhq/openmall/internal/webserver"
	"github.com/openmallhq/openmall/pkg/metrics"
)

type metricPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

func registerMetricRoutes() {
	webserver.AdminGET("/metrics/:name", queryMetric)
}

// queryMetric reads recorded samples of one gauge or counter. Defaults to
// the last hour when no range is given.
func queryMetric(c echo.Context) error {
	name := c.Param("name")
	end := time.Now().Unix()
	start := end - 3600

	if v := c.QueryParam("from"); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid from date", v)
		}
		start = t.Unix()
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid to date", v)
		}
		end = t.Unix()
	}

	points, err := metrics.Select(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to query metric", err.Error())
	}

	out := make([]metricPoint, 0, len(points))
	for _, p := range points {
		out = append(out, metricPoint{Timestamp: p.Timestamp, Value: p.Value})
	}
	return ok(c, out)
}
