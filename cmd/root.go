// Package cmd implements the command-line interface for mangasan.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/mangasan-dev/mangasan/color"
	"github.com/mangasan-dev/mangasan/constant"
	"github.com/mangasan-dev/mangasan/key"
	"github.com/mangasan-dev/mangasan/log"
	"github.com/mangasan-dev/mangasan/mangadex"
	"github.com/mangasan-dev/mangasan/style"
	"github.com/mangasan-dev/mangasan/token"
	"github.com/mangasan-dev/mangasan/util"
	"github.com/mangasan-dev/mangasan/version"
	"github.com/mangasan-dev/mangasan/where"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the mangasan application.
var rootCmd = &cobra.Command{
	Use:   constant.Mangasan,
	Short: "A command-line companion for the MangaDex API",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A command-line companion for the MangaDex API"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(color.Red)("✗"), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

// newClient builds an API client from the persisted refresh token, falling
// back to an unauthenticated one. The development API is selected through
// configuration.
func newClient() *mangadex.Client {
	var client *mangadex.Client

	if refresh, err := token.Load(); err == nil && refresh != "" {
		client, err = mangadex.NewWithRefreshToken(refresh)
		if err != nil {
			client = mangadex.New()
		}
	} else {
		client = mangadex.New()
	}

	if viper.GetBool(key.APIDev) {
		client.UseDevAPI()
	}
	return client
}
