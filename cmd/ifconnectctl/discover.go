package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skybound-dev/ifconnect/pkg/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run UDP discovery alone and print the peer address",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := discovery.Discover(context.Background(), discovery.DefaultTimeout)
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), addr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
