// Package cmd implements the command-line interface for mangasan.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mangasan-dev/mangasan/color"
	"github.com/mangasan-dev/mangasan/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pingCmd)
}

// pingCmd checks API reachability.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check whether the MangaDex API is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		started := time.Now()
		if err := newClient().Ping(context.Background()); err != nil {
			return err
		}

		fmt.Printf(
			"%s pong %s\n",
			style.Fg(color.Green)("✓"),
			style.Faint(fmt.Sprintf("(%s)", time.Since(started).Round(time.Millisecond))),
		)
		return nil
	},
}
