package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/clientes/internal/domain/record"
	"github.com/okian/clientes/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// countClientes lists the collection and returns its size.
func (c *HTTPClient) countClientes(ctx context.Context) (int, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/clientes", nil)
	if err != nil {
		return 0, err
	}
	if status != StatusOK {
		return 0, fmt.Errorf("%w: list answered %d: %s", ErrUnexpectedStatus, status, body)
	}
	var list struct {
		Clientes []json.RawMessage `json:"clientes"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return 0, fmt.Errorf("decode list: %w", err)
	}
	return len(list.Clientes), nil
}

// createCliente POSTs one record and reports whether it was stored.
func (c *HTTPClient) createCliente(ctx context.Context, r *record.Record) bool {
	payload, err := record.Encode(r)
	if err != nil {
		return false
	}
	status, _, err := c.do(ctx, http.MethodPost, "/clientes", payload)
	return err == nil && status == StatusOK
}

// submitClientes POSTs clientes concurrently using a worker pool.
func submitClientes(ctx context.Context, config *Config, client *HTTPClient, clientes []*record.Record, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "submitting clientes", logger.Int("count", len(clientes)), logger.Int("workers", config.Workers))

	var submitted, successful, failed int64

	work := make(chan *record.Record, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range work {
				if ctx.Err() != nil {
					return
				}
				atomic.AddInt64(&submitted, 1)
				if client.createCliente(ctx, r) {
					atomic.AddInt64(&successful, 1)
				} else {
					atomic.AddInt64(&failed, 1)
				}
				if config.Verbose {
					log.Debug(ctx, "progress",
						logger.Int("submitted", int(atomic.LoadInt64(&submitted))),
						logger.Int("total", len(clientes)))
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, r := range clientes {
			select {
			case <-ctx.Done():
				return
			case work <- r:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Successful = int(atomic.LoadInt64(&successful))
	stats.Failed = int(atomic.LoadInt64(&failed))
}
