// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/cli"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/config"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/logger"
	verpkg "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() {
	log := logger.New(os.Getenv(config.EnvLogFormat), nil)

	// Set up signal handling using signal.NotifyContext for cleaner cancellation
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx, version, log)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("Error: %v", err)
			os.Exit(1)
		}
		if cli.OperationPerformed {
			log.Println("Done.")
		}
	case <-ctx.Done():
		log.Println("Operation cancelled by signal. Waiting for workers to finish their current row...")
		// Workers stop between rows; an evaluator call in flight is allowed to finish.
		select {
		case <-done:
		case <-time.After(30 * time.Second):
		}
		os.Exit(130) // Standard exit code for SIGINT
	}
}
