// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/avalanchego/version"
)

const Name = "movesandbox"

var Version = version.NewDefaultVersion(0, 1, 0)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   Name,
		Short: "Local Sui sandbox",
		Long: `movesandbox runs an in-memory Sui ledger behind the Sui JSON-RPC
client surface, for testing Move packages and their clients.`,
		Version:       Version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addGlobalFlags(root.PersistentFlags())
	root.AddCommand(
		newServeCmd(),
		newBuildCmd(),
		newPublishCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s@%s\n", Name, Version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", Name, err)
		os.Exit(1)
	}
}
