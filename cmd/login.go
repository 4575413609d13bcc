// Package cmd implements the command-line interface for mangasan.
package cmd

import (
	"context"
	"fmt"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/mangasan-dev/mangasan/color"
	"github.com/mangasan-dev/mangasan/key"
	"github.com/mangasan-dev/mangasan/mangadex"
	"github.com/mangasan-dev/mangasan/style"
	"github.com/mangasan-dev/mangasan/token"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().BoolP("browser", "b", false, "Authorize through the browser instead of entering credentials")
}

// loginCmd authenticates against MangaDex and persists the refresh token.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with MangaDex and persist the session",
	Long: `Authenticate with MangaDex using account credentials, or through the
browser when an OAuth2 personal client is configured, and persist the
refresh token for future runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID := viper.GetString(key.AuthClientID)
		clientSecret := viper.GetString(key.AuthClientSecret)

		if lo.Must(cmd.Flags().GetBool("browser")) {
			if clientID == "" || clientSecret == "" {
				return fmt.Errorf("browser login requires %s and %s to be configured", key.AuthClientID, key.AuthClientSecret)
			}

			client, err := mangadex.NewWithOAuthClient(clientID, clientSecret)
			if err != nil {
				return err
			}
			if viper.GetBool(key.APIDev) {
				client.UseDevAPI()
			}

			if err := client.AuthenticateWithBrowser(ctx, viper.GetInt(key.AuthCallbackPort)); err != nil {
				return err
			}
			return finishLogin(ctx, client)
		}

		var username, password string
		if err := survey.AskOne(&survey.Input{Message: "Username or email:"}, &username, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)); err != nil {
			return err
		}

		var client *mangadex.Client
		var err error
		if clientID != "" && clientSecret != "" {
			client, err = mangadex.NewWithOAuth(clientID, clientSecret, username, password)
		} else {
			client, err = mangadex.NewWithLogin(username, password)
		}
		if err != nil {
			return err
		}
		if viper.GetBool(key.APIDev) {
			client.UseDevAPI()
		}

		return finishLogin(ctx, client)
	},
}

// finishLogin verifies the session against the account endpoint and persists
// the refresh token.
func finishLogin(ctx context.Context, client *mangadex.Client) error {
	me, err := client.Me(ctx)
	if err != nil {
		return err
	}

	if err := token.Save(client.RefreshToken()); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}

	fmt.Printf(
		"%s logged in as %s\n",
		style.Fg(color.Green)("✓"),
		style.Bold(me.Attributes.Username),
	)
	return nil
}
