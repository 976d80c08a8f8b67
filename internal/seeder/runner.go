package seeder

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/clientes/internal/domain/record"
	"github.com/okian/clientes/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes a complete seeding run.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.Count <= 0 || config.Workers <= 0 {
		return nil, fmt.Errorf("%w: count and workers must be positive", ErrInvalidConfig)
	}
	log := logger.Get()
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting clientes seed",
		logger.String("baseURL", config.BaseURL),
		logger.Int("count", config.Count),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	// Step 1: Check service status
	if err := checkStatus(ctx, client); err != nil {
		return nil, fmt.Errorf("service status check failed: %w", err)
	}

	// Step 2: Count existing clientes
	before, err := client.countClientes(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial count failed: %w", err)
	}
	stats.CountBefore = before

	// Step 3: Generate and submit
	clientes := Generate(ctx, config.Count, config.Seed)
	stats.Generated = len(clientes)
	submitClientes(ctx, config, client, clientes, stats)

	// Step 4: Verify
	after, err := client.countClientes(ctx)
	if err != nil {
		return nil, fmt.Errorf("final count failed: %w", err)
	}
	stats.CountAfter = after

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if config.OutputFile != "" {
		if err := saveClientesToFile(ctx, config.OutputFile, clientes); err != nil {
			log.Warn(ctx, "failed to save clientes to file", logger.Error(err))
		}
	}

	if grown := after - before; grown < stats.Successful {
		return stats, fmt.Errorf("%w: collection grew by %d, %d creates succeeded", ErrVerification, grown, stats.Successful)
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d creates failed", ErrVerification, stats.Failed)
	}
	log.Info(ctx, "seed completed successfully")
	return stats, nil
}

func checkStatus(ctx context.Context, client *HTTPClient) error {
	status, _, err := client.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != StatusOK {
		return fmt.Errorf("%w: status answered %d", ErrUnexpectedStatus, status)
	}
	return nil
}

// saveClientesToFile writes the generated clientes as a JSON array.
func saveClientesToFile(ctx context.Context, filename string, clientes []*record.Record) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	list := make(record.List, 0, len(clientes))
	for _, r := range clientes {
		list = append(list, r)
	}
	data, err := record.Encode(list)
	if err != nil {
		return fmt.Errorf("failed to encode clientes: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "clientes saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("countBefore", stats.CountBefore),
		logger.Int("countAfter", stats.CountAfter),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("perSecond", perSecond))
}
