package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/okian/clientes/internal/adapters/http/api"
	lambdahandler "github.com/okian/clientes/internal/adapters/http/lambda"
	service "github.com/okian/clientes/internal/app"
	"github.com/okian/clientes/internal/config"
	"github.com/okian/clientes/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := service.Build(ctx, cfg, log.Named("service"))
	if err != nil {
		log.Fatal(ctx, "failed to build service", logger.Error(err))
	}

	router := api.NewRouter(svc, api.WithLogger(log.Named("router")))
	awslambda.Start(lambdahandler.New(router, lambdahandler.WithLogger(log.Named("lambda"))).Handle)
}
