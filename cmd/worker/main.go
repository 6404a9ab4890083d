package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/filevault/app"
	"github.com/dmitrymomot/filevault/pkg/logger"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}
	log := app.NewLogger(cfg).With(logger.Component("worker"))
	logger.SetAsDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("worker stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg app.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			log.Error("failed to close app", logger.Error(err))
		}
	}()

	return a.Worker.Run(ctx)()
}
