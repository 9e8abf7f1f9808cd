package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	dispatchcmder "github.com/papercomputeco/dispatch/cmd/dispatch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := dispatchcmder.NewDispatchCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
