package main

import (
	"fmt"

	"github.com/otomaru/slk/internal/jsonval"
	"github.com/otomaru/slk/internal/slack"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Long: `List the conversations visible to the authorized user.

Each line is "<id>	<name>". Use the id with 'slk history'.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}

	raw, err := client.FetchConversationsList()
	if err != nil {
		return err
	}
	doc, err := jsonval.Parse(raw)
	if err != nil {
		return err
	}
	conversations, err := slack.ExtractConversations(doc)
	if err != nil {
		return err
	}

	for _, c := range conversations {
		fmt.Printf("%s\t%s\n", c.ID, c.Name)
	}
	return nil
}
