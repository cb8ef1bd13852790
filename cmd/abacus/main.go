package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dc0d/onexit"

	"github.com/zephyrtronium/abacus/internal/cli"
	"github.com/zephyrtronium/abacus/internal/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Run(ctx, onexit.ForceExit, os.Args[1:]...)
	stop()
	if err != nil {
		log.Error("run failed", slog.Any("error", err))
		onexit.ForceExit(1)
	}
	onexit.ForceExit(0)
}
