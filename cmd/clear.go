// Package cmd implements the command-line interface for mangasan.
package cmd

import (
	"fmt"

	"github.com/mangasan-dev/mangasan/color"
	"github.com/mangasan-dev/mangasan/style"
	"github.com/mangasan-dev/mangasan/util"
	"github.com/mangasan-dev/mangasan/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget defines a filesystem resource eligible for automated cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

// clearTargets registry of all application artifacts that can be selectively cleared.
var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"tag registry", "tags", mo.Some("t"), where.Tags},
	{"log directory", "logs", mo.Some("l"), where.Logs},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd manages the cleanup of temporary and cached application artifacts.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear temporary and cached application artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if lo.Must(cmd.Flags().GetBool(target.argLong)) {
				anyCleared = true
				e := util.PrintErasable(fmt.Sprintf("Clearing %s...", target.name))
				_ = util.Delete(target.location())
				e()
				fmt.Printf("%s %s cleared\n", style.Fg(color.Green)("✓"), util.Capitalize(target.name))
			}
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
