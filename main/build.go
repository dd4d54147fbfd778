// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/movesandbox/client"
	"github.com/ava-labs/movesandbox/publish"
	"github.com/ava-labs/movesandbox/service"
	"github.com/ava-labs/movesandbox/types"
)

const (
	urlKey    = "url"
	senderKey = "sender"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <package-dir>",
		Short: "Compile a Move package and print its modules and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			out, err := publish.NewCompiler(config.Publish).Compile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			deps, err := publish.ReconcileDependencies(out.Dependencies)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"modules":      out.Modules,
				"dependencies": deps,
			})
		},
	}
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <package-dir>",
		Short: "Compile a Move package and publish it to a running sandbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			sender, err := cmd.Flags().GetString(senderKey)
			if err != nil {
				return err
			}
			owner, err := types.ParseAddress(sender)
			if err != nil {
				return err
			}
			url, err := cmd.Flags().GetString(urlKey)
			if err != nil {
				return err
			}

			out, err := publish.NewCompiler(config.Publish).Compile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp, err := client.New(url).PublishModules(cmd.Context(), out.Modules, out.Dependencies, owner)
			if err != nil {
				return err
			}
			for _, change := range resp.ObjectChanges {
				if change.Type == types.ChangePublished && change.PackageID != nil {
					fmt.Fprintln(cmd.OutOrStdout(), change.PackageID)
				}
			}
			return nil
		},
	}
	cmd.Flags().String(urlKey, fmt.Sprintf("http://127.0.0.1:9650%s", service.RPCPath), "JSON-RPC endpoint of the sandbox")
	cmd.Flags().String(senderKey, "", "Address that receives the upgrade capability")
	_ = cmd.MarkFlagRequired(senderKey)
	return cmd
}
