// Package lambda adapts API Gateway proxy events to the record router.
package lambda

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/okian/clientes/internal/adapters/http/api"
	"github.com/okian/clientes/pkg/logger"
)

// Handler serves API Gateway proxy events.
type Handler struct {
	router *api.Router
	logger logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a handler dispatching to router.
func New(router *api.Router, opts ...Option) *Handler {
	h := &Handler{router: router, logger: logger.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle converts the event, dispatches it and converts the response back.
// It never returns an error: failures are answered like any other request.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := ToRequest(event)
	if err != nil {
		h.logger.Warn(ctx, "failed to decode event body", logger.Error(err))
		req = api.Request{Method: event.HTTPMethod, Path: event.Path, Query: event.QueryStringParameters}
	}
	return ToResponse(h.router.Handle(ctx, req)), nil
}

// ToRequest maps a proxy event to a router request, decoding base64 bodies.
func ToRequest(event events.APIGatewayProxyRequest) (api.Request, error) {
	req := api.Request{
		Method: event.HTTPMethod,
		Path:   event.Path,
		Query:  event.QueryStringParameters,
		Body:   event.Body,
	}
	if event.IsBase64Encoded && event.Body != "" {
		b, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return api.Request{}, fmt.Errorf("decode base64 body: %w", err)
		}
		req.Body = string(b)
	}
	return req, nil
}

// ToResponse maps a router response to a proxy response.
func ToResponse(resp api.Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}
}
