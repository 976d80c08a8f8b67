package api

import (
	"context"
	"strconv"
	"time"

	"github.com/okian/clientes/pkg/metrics"
)

// HTTP status code constants.
const (
	statusBadRequest    = 400
	statusNotFound      = 404
	statusInternalError = 500
)

// withMetrics wraps a route handler to record Prometheus metrics.
func withMetrics(next HandlerFunc, route string) func(ctx context.Context, req Request) Response {
	return func(ctx context.Context, req Request) Response {
		start := time.Now()
		resp, _ := next(ctx, req)
		recordDispatch(route, req.Method, resp.StatusCode, float64(time.Since(start).Microseconds())/1000.0)
		return resp
	}
}

func recordDispatch(route, method string, statusCode int, durationMs float64) {
	statusCodeStr := strconv.Itoa(statusCode)
	metrics.RecordHTTPRequest(route, method, statusCodeStr)
	metrics.RecordHTTPRequestDuration(route, method, statusCodeStr, durationMs)

	if statusCode >= statusBadRequest {
		errorType := getErrorType(statusCode)
		metrics.RecordErrorByEndpoint(route, method, errorType)
		metrics.RecordErrorByType(errorType, getErrorSeverity(statusCode))
	}
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// getErrorSeverity returns error severity based on HTTP status code.
func getErrorSeverity(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "high"
	case statusCode >= statusBadRequest:
		return "medium"
	default:
		return "low"
	}
}
