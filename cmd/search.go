// Package cmd implements the command-line interface for mangasan.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mangasan-dev/mangasan/color"
	"github.com/mangasan-dev/mangasan/mangadex"
	"github.com/mangasan-dev/mangasan/style"
	"github.com/mangasan-dev/mangasan/tags"
	"github.com/mangasan-dev/mangasan/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("limit", "l", 10, "Maximum number of results to display")
	searchCmd.Flags().StringSliceP("tag", "t", nil, "Require these tags (names, resolved fuzzily)")
	searchCmd.Flags().StringSliceP("exclude-tag", "T", nil, "Exclude these tags")
	searchCmd.Flags().String("tag-mode", "AND", "How required tags combine (AND or OR)")
	searchCmd.Flags().StringSliceP("rating", "r", nil, "Content ratings to include (safe, suggestive, erotica)")
	searchCmd.SetOut(os.Stdout)
}

// searchCmd performs a manga search against the API.
var searchCmd = &cobra.Command{
	Use:   "search [title]",
	Short: "Search MangaDex for manga by title and tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client := newClient()

		opts := mangadex.MangaListOptions{
			Title:         strings.Join(args, " "),
			Limit:         lo.Must(cmd.Flags().GetInt("limit")),
			ContentRating: lo.Must(cmd.Flags().GetStringSlice("rating")),
		}

		mode := lo.Must(cmd.Flags().GetString("tag-mode"))
		included := lo.Must(cmd.Flags().GetStringSlice("tag"))
		excluded := lo.Must(cmd.Flags().GetStringSlice("exclude-tag"))

		if len(included) > 0 || len(excluded) > 0 {
			registry, err := tags.Load()
			if err != nil {
				return err
			}

			if len(included) > 0 {
				query, err := registry.NewQuery(mode, included...)
				if err != nil {
					return err
				}
				query.Include(&opts)
			}
			if len(excluded) > 0 {
				query, err := registry.NewQuery("OR", excluded...)
				if err != nil {
					return err
				}
				query.Exclude(&opts)
			}
		}

		page, err := client.SearchManga(ctx, opts)
		if err != nil {
			return err
		}

		if len(page.Items) == 0 {
			cmd.Println(style.Faint("no results"))
			return nil
		}

		for _, manga := range page.Items {
			year := ""
			if manga.Attributes.Year != nil {
				year = fmt.Sprintf(" (%d)", *manga.Attributes.Year)
			}

			cmd.Printf(
				"%s%s %s\n  %s\n",
				style.Bold(manga.Title("en")),
				style.Faint(year),
				style.Fg(color.Yellow)(manga.Attributes.Status),
				style.Faint(manga.ID),
			)
		}

		cmd.Println()
		cmd.Println(style.Faint(fmt.Sprintf(
			"showing %s of %d total",
			util.Quantify(len(page.Items), "result", "results"),
			page.Total,
		)))
		return nil
	},
}
