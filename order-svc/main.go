package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"barapp/order-svc/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
