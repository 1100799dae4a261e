// Command taskforge runs the project lifecycle and notification engine.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskforge/taskforge/internal/app/runtime"
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/taskforge.yaml", "path to the configuration file")
	flag.Parse()

	log := logger.NewDefault("main")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	app, err := runtime.NewApplication(cfg)
	if err != nil {
		log.WithError(err).Error("failed to build application")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.WithError(err).Error("application exited with error")
		os.Exit(1)
	}
}
