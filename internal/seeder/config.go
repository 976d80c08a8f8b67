// Package seeder generates fake clientes, submits them to a running service
// and verifies the collection grew accordingly.
package seeder

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Count      int           // Number of clientes to generate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Seed       int64         // Faker seed; 0 picks a time-based seed
	OutputFile string        // Optional JSON dump of the generated clientes
	Verbose    bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	Generated   int
	Submitted   int
	Successful  int
	Failed      int
	CountBefore int
	CountAfter  int
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}

// HTTP status code constants.
const (
	StatusOK = 200
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
)
