// Package api routes request descriptors to the clientes record operations
// and adapts them to net/http.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/clientes/internal/adapters/repository"
	"github.com/okian/clientes/internal/domain/ingest"
	"github.com/okian/clientes/internal/domain/record"
	"github.com/okian/clientes/pkg/logger"
)

// Dependencies required by the handlers.
type Dependencies interface {
	Get(ctx context.Context, id string) (*record.Record, error)
	List(ctx context.Context) ([]*record.Record, error)
	Create(ctx context.Context, r *record.Record) (*record.Record, error)
	UpdateField(ctx context.Context, id, field string, value record.Value) (repository.UpdateResult, error)
	Delete(ctx context.Context, id string) (repository.DeleteResult, error)
	Import(ctx context.Context) (ingest.Result, error)
}

// Request is a transport-neutral inbound request.
type Request struct {
	Method string
	Path   string
	// Query holds the first value of each query parameter; nil when absent.
	Query map[string]string
	// Body is the raw request body, possibly empty.
	Body string
}

// Response is a transport-neutral outbound response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// HandlerFunc handles one route. A returned error is answered by the router.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

// Route paths.
const (
	PathStatus       = "/status"
	PathLoadExternal = "/load_external_data"
	PathCliente      = "/cliente"
	PathClientes     = "/clientes"
)

const (
	genericErrorMessage = "Error processing request"
	notFoundMessage     = "404 Not Found"
	unmatchedRoute      = "unmatched"
)

// Router dispatches requests by exact method and path.
type Router struct {
	deps   Dependencies
	routes map[string]HandlerFunc
	logger logger.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRouter builds the route table over deps.
func NewRouter(deps Dependencies, opts ...Option) *Router {
	r := &Router{deps: deps, logger: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}

	h := &handlers{deps: deps, logger: r.logger}
	r.routes = map[string]HandlerFunc{
		routeKey(http.MethodGet, PathStatus):       h.status,
		routeKey(http.MethodGet, PathLoadExternal): h.loadExternalData,
		routeKey(http.MethodGet, PathCliente):      h.getCliente,
		routeKey(http.MethodGet, PathClientes):     h.listClientes,
		routeKey(http.MethodPost, PathClientes):    h.createCliente,
		routeKey(http.MethodPatch, PathClientes):   h.updateCliente,
		routeKey(http.MethodDelete, PathClientes):  h.deleteCliente,
	}
	return r
}

func routeKey(method, path string) string {
	return method + " " + path
}

// Handle dispatches req. It always returns a response: unmatched routes get
// 404, store failures get 400 with the store message, and any other failure
// or panic gets 400 with a generic message.
func (r *Router) Handle(ctx context.Context, req Request) Response {
	r.logger.Debug(ctx, "request received",
		logger.String("method", req.Method),
		logger.String("path", req.Path),
		logger.Any("query", req.Query),
		logger.String("body", req.Body),
	)

	h, ok := r.routes[routeKey(req.Method, req.Path)]
	if !ok {
		resp := jsonResponse(http.StatusNotFound, notFoundMessage)
		recordDispatch(unmatchedRoute, req.Method, resp.StatusCode, 0)
		return resp
	}
	return withMetrics(r.recovering(h), req.Path)(ctx, req)
}

// recovering turns errors and panics into responses.
func (r *Router) recovering(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, req Request) (resp Response, err error) {
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error(ctx, "handler panicked",
					logger.String("method", req.Method),
					logger.String("path", req.Path),
					logger.Any("panic", fmt.Sprint(p)),
				)
				resp, err = jsonResponse(http.StatusBadRequest, genericErrorMessage), nil
			}
		}()

		resp, err = next(ctx, req)
		if err == nil {
			return resp, nil
		}

		if se, ok := repository.AsStoreError(err); ok {
			r.logger.Warn(ctx, "store rejected request",
				logger.String("method", req.Method),
				logger.String("path", req.Path),
				logger.String("op", se.Op),
				logger.String("code", se.Code),
				logger.Error(err),
			)
			return jsonResponse(http.StatusBadRequest, se.Message), nil
		}

		r.logger.Error(ctx, "request failed",
			logger.String("method", req.Method),
			logger.String("path", req.Path),
			logger.Error(err),
		)
		return jsonResponse(http.StatusBadRequest, genericErrorMessage), nil
	}
}

// jsonResponse encodes body as the response JSON. Encoding failures of
// values built by this package are programming errors.
func jsonResponse(status int, body any) Response {
	b, err := record.Marshal(body)
	if err != nil {
		panic(fmt.Errorf("%w: %w", ErrEncode, err))
	}
	return Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}
}

func isInvalidClientes(err error) bool {
	return errors.Is(err, ingest.ErrInvalidClientes)
}
