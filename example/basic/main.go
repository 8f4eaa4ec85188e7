package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Shreya280506-byte/SIH-STORMEYE"
)

func main() {
	cfg, err := stormeye.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	rt, err := stormeye.NewRuntime(cfg)
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("engine exited: %v", err)
	}
}
