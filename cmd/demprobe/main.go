package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/demprobe/internal/observability"
	"github.com/rs/zerolog/log"
)

func main() {
	observability.InitLogger("demprobe")

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("invalid arguments")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Error().Err(err).Msg("demprobe failed")
		stop()
		os.Exit(1)
	}
}
