// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/movesandbox/adapter"
	"github.com/ava-labs/movesandbox/memvm"
	"github.com/ava-labs/movesandbox/metrics"
	"github.com/ava-labs/movesandbox/publish"
	"github.com/ava-labs/movesandbox/sandbox"
	"github.com/ava-labs/movesandbox/service"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a sandbox over JSON-RPC",
		Long: `Serve starts a fresh sandbox and serves it over HTTP JSON-RPC until
interrupted. Sui client methods are served by sui.call and the session is
controlled through the admin service.

Example:
  movesandbox serve --http-port 9650 --signature-checks=false`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	addServeFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	handler, err := newHandler(config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting sandbox",
		"version", Version,
		"gasPrice", config.VM.GasPrice,
		"signatureChecks", config.VM.SignatureChecks,
	)
	return service.Serve(ctx, config.Server, handler)
}

func newHandler(config Config) (http.Handler, error) {
	sb, err := sandbox.New(memvm.NewFactory(config.VM).New)
	if err != nil {
		return nil, fmt.Errorf("couldn't start sandbox: %w", err)
	}

	var (
		opts           []adapter.Option
		metricsHandler http.Handler
	)
	if config.Metrics {
		m := metrics.NewPrometheusMetrics(Name)
		opts = append(opts, adapter.WithMetrics(m))
		metricsHandler = m.Handler()
	}
	compiler := publish.NewCompiler(config.Publish)
	return service.NewHandler(adapter.New(sb, opts...), compiler, metricsHandler)
}
