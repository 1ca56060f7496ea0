package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/skybound-dev/ifconnect/pkg/client"
	"github.com/skybound-dev/ifconnect/pkg/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <name> [<name>...]",
	Short: "Launch a live dashboard of polled commands' state-cache entries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial(context.Background())
		if err != nil {
			return err
		}
		defer c.Close()

		rows := make(chan tui.Row, 16)
		done := make(chan struct{})

		c.On(client.EventData, func(e client.Event) {
			row := tui.Row{
				Name:      e.Command,
				Value:     e.Data.String(),
				Type:      e.Data.Type.String(),
				UpdatedAt: time.Now().Format("15:04:05"),
			}
			select {
			case rows <- row:
			case <-done:
			}
		})

		for _, name := range args {
			if err := c.PollRegister(name, nil); err != nil {
				return fmt.Errorf("watch %q: %w", name, err)
			}
		}

		p := tea.NewProgram(tui.New(rows, done), tea.WithAltScreen())
		_, err = p.Run()
		close(done)
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
