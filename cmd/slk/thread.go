package main

import (
	"fmt"
	"strings"

	"github.com/otomaru/slk/internal/slack"
	"github.com/spf13/cobra"
)

var threadCmd = &cobra.Command{
	Use:   "thread <channel-id> <thread-ts> | thread <url>",
	Short: "Show the replies of a thread",
	Long: `Print a thread's messages as plain text.

Accepts either a channel ID plus the thread's root timestamp, or a Slack
archive link copied from the app.

Examples:
  slk thread C081VT5GLQH 1770689887.565249
  slk thread https://myteam.slack.com/archives/C081VT5GLQH/p1770689887565249`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runThread,
}

func init() {
	rootCmd.AddCommand(threadCmd)
}

// threadArgs resolves the command arguments to a channel ID and timestamp.
func threadArgs(args []string) (slack.Thread, error) {
	if strings.HasPrefix(args[0], "http") {
		if len(args) != 1 {
			return slack.Thread{}, fmt.Errorf("a thread URL takes no further arguments")
		}
		return slack.ParseArchiveURL(args[0])
	}
	if len(args) != 2 {
		return slack.Thread{}, fmt.Errorf("usage: slk thread <channel-id> <thread-ts>")
	}
	return slack.Thread{ChannelID: args[0], TS: args[1]}, nil
}

func runThread(cmd *cobra.Command, args []string) error {
	thread, err := threadArgs(args)
	if err != nil {
		return err
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	raw, err := client.FetchThreadReplies(thread.ChannelID, thread.TS)
	if err != nil {
		return err
	}
	return renderRawMessages(client, raw)
}
