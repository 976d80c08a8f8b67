package api

import (
	"context"
	"io"
	"net/http"

	"github.com/okian/clientes/pkg/logger"
)

// maxBodyBytes bounds request bodies read by the HTTP server.
const maxBodyBytes = 6 << 20

// Server adapts the Router to net/http.
type Server struct {
	router *Router
	logger logger.Logger
}

// NewServer creates an HTTP server for deps.
func NewServer(deps Dependencies, opts ...Option) *Server {
	r := NewRouter(deps, opts...)
	return &Server{router: r, logger: r.logger}
}

// Router returns the descriptor router, shared with other transports.
func (s *Server) Router() *Router { return s.router }

// Register attaches the API and the metrics endpoint to mux. Every other
// path falls through to the router, which answers unmatched routes with 404.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/metrics", HandleMetrics)
	mux.Handle("/", s)
}

// ServeHTTP converts r into a Request and writes the router's Response.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := toRequest(w, r)
	if err != nil {
		s.logger.Warn(r.Context(), "failed to read request body", logger.Error(err))
		writeResponse(w, jsonResponse(http.StatusBadRequest, genericErrorMessage))
		return
	}
	writeResponse(w, s.router.Handle(r.Context(), req))
}

func toRequest(w http.ResponseWriter, r *http.Request) (Request, error) {
	req := Request{Method: r.Method, Path: r.URL.Path}

	if values := r.URL.Query(); len(values) > 0 {
		req.Query = make(map[string]string, len(values))
		for k, v := range values {
			if len(v) > 0 {
				req.Query[k] = v[0]
			}
		}
	}

	if r.Body != nil {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			return Request{}, err
		}
		req.Body = string(body)
	}
	return req, nil
}

func writeResponse(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}
