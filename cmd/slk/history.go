package main

import (
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <channel-id>",
	Short: "Show recent messages of a channel",
	Long: `Print the most recent messages of a channel as plain text.

Each line is "YYYY-MM-DD HH:MM:SS @name text". Find channel IDs with
'slk list'.

Examples:
  slk history C081VT5GLQH`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}

	raw, err := client.FetchConversationHistory(args[0])
	if err != nil {
		return err
	}
	return renderRawMessages(client, raw)
}
