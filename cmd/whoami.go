// Package cmd implements the command-line interface for mangasan.
package cmd

import (
	"context"
	"strings"

	"github.com/mangasan-dev/mangasan/color"
	"github.com/mangasan-dev/mangasan/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// whoamiCmd displays the logged-in account.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display the currently logged-in MangaDex account",
	RunE: func(cmd *cobra.Command, args []string) error {
		me, err := newClient().Me(context.Background())
		if err != nil {
			return err
		}

		cmd.Printf(
			"%s %s\n",
			style.Bold(me.Attributes.Username),
			style.Fg(color.Yellow)(strings.Join(me.Attributes.Roles, ", ")),
		)
		return nil
	},
}
