// Package version provides unified mechanisms for application version tracking and update discovery.
package version

import (
	"fmt"

	"github.com/mangasan-dev/mangasan/color"
	"github.com/mangasan-dev/mangasan/constant"
	"github.com/mangasan-dev/mangasan/key"
	"github.com/mangasan-dev/mangasan/style"
	"github.com/mangasan-dev/mangasan/util"
	"github.com/spf13/viper"
)

// Notify displays a terminal alert if a more recent stable application version is available.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable("Checking if new version is available...")
	version, err := Latest()
	erase()
	if err == nil {
		comp, err := Compare(version, constant.Version)
		if err == nil && comp <= 0 {
			return
		}
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/mangasan-dev/mangasan/releases/tag/v"+version),
	)
}
