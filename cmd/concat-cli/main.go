// Command concat-cli renders templates that use the concat helper, or joins
// values entered at the prompt.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg, err := parseConfig(os.Args[1:], os.LookupEnv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	logger := newLogger(cfg.logLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		cfg:    cfg,
		logger: logger,
		stdout: os.Stdout,
		driver: newSurveyDriver(os.Stdout),
	}
	if err := a.run(ctx); err != nil {
		if errors.Is(err, errAborted) {
			logger.Warn().Msg("aborted")
			stop()
			os.Exit(130)
		}
		logger.Error().Err(err).Msg("concat-cli failed")
		stop()
		os.Exit(1)
	}
}
