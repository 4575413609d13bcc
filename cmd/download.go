// Package cmd implements the command-line interface for mangasan.
package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mangasan-dev/mangasan/color"
	"github.com/mangasan-dev/mangasan/style"
	"github.com/mangasan-dev/mangasan/util"
	"github.com/mangasan-dev/mangasan/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringP("output", "o", "", "Directory to download into (defaults to the downloads directory)")
}

// downloadCmd downloads every page of a chapter.
var downloadCmd = &cobra.Command{
	Use:   "download [chapter-id]",
	Short: "Download all pages of a chapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client := newClient()

		chapter, err := client.GetChapter(ctx, args[0], "manga", "scanlation_group")
		if err != nil {
			return err
		}

		dir := lo.Must(cmd.Flags().GetString("output"))
		if dir == "" {
			dir = filepath.Join(where.Downloads(), util.SanitizeFilename(chapter.String()))
		}

		erase := util.PrintErasable(fmt.Sprintf("Downloading %s...", chapter))
		pages, err := client.DownloadChapter(ctx, chapter, dir)
		erase()
		if err != nil {
			return err
		}

		fmt.Printf(
			"%s downloaded %s to %s\n",
			style.Fg(color.Green)("✓"),
			style.Bold(util.Quantify(len(pages), "page", "pages")),
			style.Faint(dir),
		)
		return nil
	},
}
