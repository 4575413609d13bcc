// Package cmd implements the command-line interface for mangasan.
package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/mangasan-dev/mangasan/color"
	"github.com/mangasan-dev/mangasan/style"
	"github.com/mangasan-dev/mangasan/tags"
	"github.com/mangasan-dev/mangasan/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tagsCmd)
	tagsCmd.AddCommand(tagsListCmd)
	tagsCmd.AddCommand(tagsUpdateCmd)
	tagsListCmd.SetOut(os.Stdout)
}

// tagsCmd manages the local tag registry.
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Inspect and refresh the manga tag registry",
}

// tagsListCmd prints the registry grouped by taxonomy group.
var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all known tags grouped by taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := tags.Load()
		if err != nil {
			return err
		}

		grouped := make(map[string][]tags.Tag)
		for _, tag := range registry.All() {
			grouped[tag.Group] = append(grouped[tag.Group], tag)
		}

		groups := make([]string, 0, len(grouped))
		for group := range grouped {
			groups = append(groups, group)
		}
		sort.Strings(groups)

		for _, group := range groups {
			entries := grouped[group]
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Name < entries[j].Name
			})

			cmd.Println(style.New().Bold(true).Foreground(color.Purple).Render(util.Capitalize(group)))
			for _, tag := range entries {
				cmd.Printf("  %s %s\n", tag.Name, style.Faint(tag.ID))
			}
			cmd.Println()
		}
		return nil
	},
}

// tagsUpdateCmd refreshes the registry from the live taxonomy.
var tagsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the tag registry from the live API taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := tags.Load()
		if err != nil {
			return err
		}

		erase := util.PrintErasable("Updating tag registry...")
		count, err := registry.Update(context.Background(), newClient())
		erase()
		if err != nil {
			return err
		}

		fmt.Printf(
			"%s refreshed %s\n",
			style.Fg(color.Green)("✓"),
			style.Bold(util.Quantify(count, "tag", "tags")),
		)
		return nil
	},
}
