package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gosshub/client/internal/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newCLI(os.Stdin, os.Stdout).execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", api.UserMessage(err))
		os.Exit(1)
	}
}
