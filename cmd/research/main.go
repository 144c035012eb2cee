package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"research-client/internal/di"
	"research-client/internal/infrastructure/env"
)

func main() {
	envService := env.NewEnvService()
	cfg := di.ConfigFromEnv(envService)
	cfg.LogConsole = envService.GetBool("LOG_CONSOLE", false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer container.Close()

	container.Logger.Info("Research client started", "apiURL", cfg.APIURL, "env", envService.AppEnv())

	if err := run(ctx, container, cfg); err != nil && !errors.Is(err, context.Canceled) {
		container.Logger.Error("Research client stopped", "error", err)
	}
}

// run repeats the research flow until the user declines to start over or
// input ends.
func run(ctx context.Context, c *di.Container, cfg di.Config) error {
	for {
		query, err := c.UI.AskQuery(ctx)
		if err != nil {
			return err
		}

		c.Logger.Info("Research requested", "query", query)
		report, err := c.Runner.Execute(ctx, cfg.NewRequest(query))
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			c.Logger.Error("Research failed", "error", err)
			c.UI.ShowError(ctx, err)
		default:
			c.UI.ShowReport(ctx, report)
		}

		again, err := c.UI.ConfirmRestart(ctx)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}
