package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/clientes/internal/seeder"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seeder.NewCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
