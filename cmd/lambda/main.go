package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	adapterlogger "agency-rbac/internal/adapters/logger"
	"agency-rbac/internal/app"
	"agency-rbac/internal/config"
	"agency-rbac/internal/platform/lambda"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		adapterlogger.New(nil).Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	level, err := adapterlogger.ParseLevel(cfg.LogLevel)
	if err != nil {
		adapterlogger.New(nil).Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	logger := adapterlogger.New(level).With("service", "agency-rbac", "runtime", "lambda")

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to initialize service", "error", err)
		os.Exit(1)
	}
	_ = a.Seed(ctx)

	awslambda.Start(lambda.NewLambdaHandler(a.Echo, logger))
}
