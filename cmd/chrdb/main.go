package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZanzyTHEbar/chrdb/cmd/chrdb/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command.Root.ExecuteContext(ctx); err != nil {
		logger := command.Logger()
		logger.Error().Err(err).Msg("chrdb failed")
		stop()
		os.Exit(1)
	}
}
