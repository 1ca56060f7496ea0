package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Connect and print the loaded command manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial(context.Background())
		if err != nil {
			return err
		}
		defer c.Close()

		entries, err := c.Manifest()
		if err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.Format(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}
