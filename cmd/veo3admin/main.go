// Command veo3admin drives the payment review console from a terminal.
//
//	veo3admin [-api URL] [-email E] [-password P] orders|approve|reject|stats|watch [flags]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}
