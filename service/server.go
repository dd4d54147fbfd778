// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package service serves a sandbox over HTTP JSON-RPC.
//
// Two services are registered: "sui" dispatches Sui client methods through
// the adapter and "admin" controls the session. Method names follow the
// service.method convention, e.g. sui.call and admin.mintSui.
package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/rpc/v2"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/utils/wrappers"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/movesandbox/adapter"
	"github.com/ava-labs/movesandbox/publish"
)

const (
	SuiServiceName   = "sui"
	AdminServiceName = "admin"

	// RPCPath serves JSON-RPC requests.
	RPCPath = "/rpc"
	// MetricsPath serves Prometheus metrics when enabled.
	MetricsPath = "/metrics"

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Config is where the server listens.
type Config struct {
	Host string `json:"host"`
	Port uint16 `json:"port"`
}

// Addr is the host:port of [c].
func (c Config) Addr() string { return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port))) }

// NewHandler routes JSON-RPC requests to the services of [a]. A nil
// [compiler] disables admin.publishPackage; a nil [metricsHandler]
// disables the metrics route.
func NewHandler(a *adapter.Adapter, compiler *publish.Compiler, metricsHandler http.Handler) (http.Handler, error) {
	server := rpc.NewServer()
	codec := cjson.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")

	errs := wrappers.Errs{}
	errs.Add(
		server.RegisterService(&SuiService{adapter: a}, SuiServiceName),
		server.RegisterService(&AdminService{sandbox: a.Sandbox(), compiler: compiler}, AdminServiceName),
	)
	if errs.Errored() {
		return nil, errs.Err
	}

	mux := http.NewServeMux()
	mux.Handle(RPCPath, server)
	if metricsHandler != nil {
		mux.Handle(MetricsPath, metricsHandler)
	}
	return mux, nil
}

// Serve listens on [config] until [ctx] is done, then shuts down
// gracefully.
func Serve(ctx context.Context, config Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              config.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving sandbox", "addr", srv.Addr, "rpc", RPCPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("sandbox server stopped")
	return nil
}
