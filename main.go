// Yggdrasil - an anonymous WebSocket pair relay.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"yggdrasil/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "yggdrasil: %v\n", err)
		os.Exit(1)
	}
}
