package middleware

import (
	"reflect"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	httpRequestsDuration = "request_duration_seconds"
	metricsPath          = "/metrics"
	notFoundPath         = "/not-found"
)

func isNotFoundHandler(handler echo.HandlerFunc) bool {
	return reflect.ValueOf(handler).Pointer() == reflect.ValueOf(echo.NotFoundHandler).Pointer()
}

// Metrics instruments every route with a request-duration histogram and
// serves the Prometheus scrape endpoint on /metrics.
func Metrics() echo.MiddlewareFunc {
	httpMetrics, err := registerHTTPMetrics()
	if err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			httpMetrics = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			panic(err)
		}
	}

	promHandler := echo.WrapHandler(promhttp.Handler())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := c.Path()

			if req.RequestURI == metricsPath {
				return promHandler(c)
			}

			// to avoid attack high cardinality of 404
			if isNotFoundHandler(c.Handler()) {
				path = notFoundPath
			}

			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			httpMetrics.WithLabelValues(status, req.Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func registerHTTPMetrics() (*prometheus.HistogramVec, error) {
	httpMetrics := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: httpRequestsDuration,
		Help: "Spend time by processing a route",
		Buckets: []float64{
			0.0005,
			0.001, // 1ms
			0.005,
			0.01, // 10ms
			0.05,
			0.1, // 100 ms
			0.5,
			1.0, // 1s
			5.0,
			10.0, // 10s
		},
	}, []string{"code", "method", "path"})
	return httpMetrics, prometheus.Register(httpMetrics)
}
