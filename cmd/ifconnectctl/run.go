package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skybound-dev/ifconnect/pkg/protocol"
)

var runCmd = &cobra.Command{
	Use:   "run <name> [key=value ...]",
	Short: "Invoke a command with named arguments",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		invokeArgs, err := parseInvokeArgs(args[1:])
		if err != nil {
			return err
		}

		c, err := dial(context.Background())
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Run(name, invokeArgs); err != nil {
			return fmt.Errorf("run %q: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s invoked\n", name)
		return nil
	},
}

// parseInvokeArgs turns "key=value" command-line tokens into InvokeArgs.
func parseInvokeArgs(raw []string) ([]protocol.InvokeArg, error) {
	args := make([]protocol.InvokeArg, 0, len(raw))
	for _, tok := range raw {
		name, value, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, fmt.Errorf("invalid argument %q, want key=value", tok)
		}
		args = append(args, protocol.InvokeArg{Name: name, Value: value})
	}
	return args, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
