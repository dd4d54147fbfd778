// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/movesandbox/memvm"
	"github.com/ava-labs/movesandbox/publish"
	"github.com/ava-labs/movesandbox/service"
)

const (
	configKey          = "config"
	httpHostKey        = "http-host"
	httpPortKey        = "http-port"
	logLevelKey        = "log-level"
	logFormatKey       = "log-format"
	gasPriceKey        = "gas-price"
	signatureChecksKey = "signature-checks"
	initialTimeMsKey   = "initial-time-ms"
	suiPathKey         = "sui-path"
	metricsKey         = "metrics"

	envPrefix = "MOVESANDBOX"

	logFormatTerminal = "terminal"
	logFormatJSON     = "json"
)

// Config is the resolved configuration of the binary.
type Config struct {
	Server    service.Config
	VM        memvm.Config
	Publish   publish.Config
	LogLevel  log.Lvl
	LogFormat string
	Metrics   bool
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String(configKey, "", "Config file (toml, yaml or json)")
	fs.String(logLevelKey, "info", "Log level: debug, info, warn, error or crit")
	fs.String(logFormatKey, logFormatTerminal, "Log format: terminal or json")
	fs.String(suiPathKey, "", "Path of the sui binary; searched for when empty")
}

func addServeFlags(fs *pflag.FlagSet) {
	fs.String(httpHostKey, "127.0.0.1", "Address the JSON-RPC server listens on")
	fs.Uint16(httpPortKey, 9650, "Port the JSON-RPC server listens on")
	fs.Uint64(gasPriceKey, memvm.DefaultGasPrice, "Reference gas price")
	fs.Bool(signatureChecksKey, true, "Verify transaction signatures")
	fs.Uint64(initialTimeMsKey, 0, "Clock value at genesis, in milliseconds")
	fs.Bool(metricsKey, true, "Serve Prometheus metrics")
}

// getViper binds [fs] and the environment, then reads the config file if
// one is named.
func getViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if path := v.GetString(configKey); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("couldn't read config file %s: %w", path, err)
		}
	}
	return v, nil
}

func buildConfig(v *viper.Viper) (Config, error) {
	lvl, err := log.LvlFromString(v.GetString(logLevelKey))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", logLevelKey, err)
	}
	format := v.GetString(logFormatKey)
	if format != logFormatTerminal && format != logFormatJSON {
		return Config{}, fmt.Errorf("invalid %s %q", logFormatKey, format)
	}
	return Config{
		Server: service.Config{
			Host: v.GetString(httpHostKey),
			Port: uint16(v.GetUint(httpPortKey)),
		},
		VM: memvm.Config{
			GasPrice:        v.GetUint64(gasPriceKey),
			SignatureChecks: v.GetBool(signatureChecksKey),
			InitialTimeMs:   v.GetUint64(initialTimeMsKey),
		},
		Publish:   publish.Config{SuiPath: v.GetString(suiPathKey)},
		LogLevel:  lvl,
		LogFormat: format,
		Metrics:   v.GetBool(metricsKey),
	}, nil
}

func setupLogging(config Config) {
	format := log.TerminalFormat()
	if config.LogFormat == logFormatJSON {
		format = log.JsonFormat()
	}
	log.Root().SetHandler(log.LvlFilterHandler(config.LogLevel, log.StreamHandler(os.Stderr, format)))
}

// loadConfig resolves the configuration of [fs] and installs the logger.
func loadConfig(fs *pflag.FlagSet) (Config, error) {
	v, err := getViper(fs)
	if err != nil {
		return Config{}, err
	}
	config, err := buildConfig(v)
	if err != nil {
		return Config{}, err
	}
	setupLogging(config)
	return config, nil
}
