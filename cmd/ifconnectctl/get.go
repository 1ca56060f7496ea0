package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skybound-dev/ifconnect/pkg/client"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Read a command's current value once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial(context.Background())
		if err != nil {
			return err
		}
		defer c.Close()

		result := make(chan client.Event, 1)
		if err := c.Get(args[0], func(e client.Event) { result <- e }); err != nil {
			return fmt.Errorf("get %q: %w", args[0], err)
		}

		evt := <-result
		if evt.Err != nil {
			return fmt.Errorf("get %q: %w", args[0], evt.Err)
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.Format(getRow{Name: args[0], Value: evt.Data.String()}))
		return nil
	},
}

type getRow struct {
	Name  string
	Value string
}

func init() {
	rootCmd.AddCommand(getCmd)
}
