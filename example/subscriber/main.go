// Demonstrates an in-process subscriber on the broadcast hub, the same
// stream the dashboard consumes over SSE.
package main

import (
	"context"
	"fmt"
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

	go tailEvents(ctx, rt)

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("engine exited: %v", err)
	}
}

func tailEvents(ctx context.Context, rt *stormeye.Runtime) {
	sub := rt.Hub().Register()
	defer rt.Hub().Unregister(sub)

	for {
		ev, err := rt.Hub().NextEvent(ctx, sub)
		if err != nil {
			return
		}
		if ev.Type == stormeye.EventKeepalive {
			continue
		}
		fmt.Printf("[%d] %s node=%s\n", ev.Seq, ev.Type, ev.Node)
	}
}
