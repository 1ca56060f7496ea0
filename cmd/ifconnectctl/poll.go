package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/skybound-dev/ifconnect/pkg/client"
)

var pollCmd = &cobra.Command{
	Use:   "poll <name> [<name>...]",
	Short: "Register one or more commands and print a line per update",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial(context.Background())
		if err != nil {
			return err
		}
		defer c.Close()

		out := cmd.OutOrStdout()
		for _, name := range args {
			name := name
			cb := func(e client.Event) {
				if e.Err != nil {
					fmt.Fprintf(out, "%s: error: %v\n", name, e.Err)
					return
				}
				fmt.Fprintf(out, "%s %s = %s\n", time.Now().Format(time.RFC3339), name, e.Data.String())
			}
			if err := c.PollRegister(name, cb); err != nil {
				return fmt.Errorf("poll %q: %w", name, err)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		<-sigCh
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pollCmd)
}
