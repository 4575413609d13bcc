// Package cmd implements the command-line interface for mangasan.
package cmd

import (
	"context"
	"fmt"

	"github.com/mangasan-dev/mangasan/color"
	"github.com/mangasan-dev/mangasan/log"
	"github.com/mangasan-dev/mangasan/style"
	"github.com/mangasan-dev/mangasan/token"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// logoutCmd invalidates the session and discards the persisted refresh token.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate the session and forget the persisted refresh token",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		if client.Authenticated() {
			// Invalidate server-side too; a dead session is not fatal here.
			if err := client.Close(context.Background()); err != nil {
				log.Warnf("server-side logout failed: %s", err)
			}
		}

		if err := token.Delete(); err != nil {
			return err
		}

		fmt.Printf("%s logged out\n", style.Fg(color.Green)("✓"))
		return nil
	},
}
