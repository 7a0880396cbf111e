package main

import (
	"fmt"

	"github.com/otomaru/slk/internal/config"
	"github.com/otomaru/slk/internal/oauth"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize slk with your Slack workspace",
	Long: `Run the OAuth authorization flow and save the resulting token.

A browser window opens for workspace approval; the callback lands on a
temporary local HTTPS listener. The browser will warn about the
self-signed certificate - proceed past the warning. The command waits
until the browser step is completed.

Requires SLK_CLIENT_ID and SLK_CLIENT_SECRET (or client_id/client_secret
in ~/.config/slk/config.yml) from your Slack app settings.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	clientID, clientSecret, err := config.LoadClientCredentials()
	if err != nil {
		return err
	}

	token, err := oauth.NewFlow(clientID, clientSecret).Run()
	if err != nil {
		return err
	}

	path, err := config.SaveToken(token)
	if err != nil {
		return err
	}

	fmt.Printf("Token saved to %s\n", path)
	return nil
}
