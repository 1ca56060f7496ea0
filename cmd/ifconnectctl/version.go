package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ifconnectctlVersion is set at build time via
// -ldflags "-X main.ifconnectctlVersion=x.y.z"
var ifconnectctlVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ifconnectctl's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "ifconnectctl version %s\n", ifconnectctlVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
