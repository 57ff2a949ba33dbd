// Package main runs the presetctl operator CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumenfield/lumenfield/internal/cmd/presetctl"
	"github.com/lumenfield/lumenfield/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := presetctl.New().ExecuteContext(ctx); err != nil {
		stop()
		config.Exitf("presetctl: %v", err)
	}
}
