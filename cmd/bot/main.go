package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"thesis_bot/internal/botapp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := botapp.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
