// Demonstrates swapping the SMS chain for a custom provider. Useful for
// dry runs where alerts should land on stdout instead of a phone.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shreya280506-byte/SIH-STORMEYE"
)

type stdoutProvider struct{}

func (stdoutProvider) Name() string     { return "stdout" }
func (stdoutProvider) Configured() bool { return true }

func (stdoutProvider) Send(_ context.Context, message string, numbers []string) (bool, error) {
	for _, number := range numbers {
		fmt.Printf("%s SMS to %s: %s\n", time.Now().Format(time.RFC3339), number, message)
	}
	return true, nil
}

func main() {
	cfg, err := stormeye.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	rt, err := stormeye.NewRuntime(cfg, stormeye.WithProviders(stdoutProvider{}))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("engine exited: %v", err)
	}
}
