package seeder

import (
	"context"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/clientes/pkg/logger"
)

// Default configuration constants.
const (
	defaultCount         = 100
	defaultWorkersPerCPU = 2
	defaultTimeout       = 30 * time.Second
	defaultRunTimeout    = 10 * time.Minute
	defaultBaseURL       = "http://localhost:9080"
	defaultLogFormat     = logger.FormatText
)

// NewCommand returns the seed command.
func NewCommand() *cobra.Command {
	config := &Config{}
	var logFormat string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate fake clientes and submit them to a running service",
		Long: `Generates fake clientes, POSTs them to /clientes concurrently and
checks that GET /clientes grew by the number of successful creates.`,
		Example: `  seed --count 500 --workers 16 --url http://localhost:8080
  seed --count 10 --seed 42 --output clientes.json`,
		SilenceUsage: true,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat)); err != nil {
				return err
			}
			if config.Verbose {
				logger.SetLevelString("debug") //nolint:errcheck // constant level
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()
			_, err := Run(ctx, config)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&config.BaseURL, "url", defaultBaseURL, "Base URL of the service")
	flags.IntVar(&config.Count, "count", defaultCount, "Number of clientes to generate and submit")
	flags.IntVar(&config.Workers, "workers", runtime.NumCPU()*defaultWorkersPerCPU, "Number of concurrent workers")
	flags.DurationVar(&config.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	flags.Int64Var(&config.Seed, "seed", 0, "Faker seed (0 = time based)")
	flags.StringVar(&config.OutputFile, "output", "", "Write the generated clientes to this JSON file")
	flags.BoolVarP(&config.Verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&logFormat, "log-format", defaultLogFormat, "Log format: text or json")

	return cmd
}
