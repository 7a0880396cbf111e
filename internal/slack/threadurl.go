package slack

import (
	"fmt"
	"strings"
)

// Thread identifies a thread by channel and root timestamp.
type Thread struct {
	ChannelID string
	TS        string
}

// ParseArchiveURL parses a Slack archive link of the form
// https://<team>.slack.com/archives/<channel>/p<seconds><micros> into the
// channel ID and the API timestamp "seconds.micros".
func ParseArchiveURL(rawURL string) (Thread, error) {
	segments := strings.Split(rawURL, "/")

	archivesPos := -1
	for i, s := range segments {
		if s == "archives" {
			archivesPos = i
			break
		}
	}
	if archivesPos < 0 {
		return Thread{}, fmt.Errorf("URL must contain '/archives/'")
	}
	if archivesPos+1 >= len(segments) {
		return Thread{}, fmt.Errorf("missing channel ID after /archives/")
	}
	channelID := segments[archivesPos+1]
	if archivesPos+2 >= len(segments) {
		return Thread{}, fmt.Errorf("missing timestamp after channel ID")
	}

	ts, err := convertTimestamp(segments[archivesPos+2])
	if err != nil {
		return Thread{}, err
	}
	return Thread{ChannelID: channelID, TS: ts}, nil
}

// convertTimestamp turns the URL form p1770689887565249 into the API form
// 1770689887.565249.
func convertTimestamp(raw string) (string, error) {
	digits, ok := strings.CutPrefix(raw, "p")
	if !ok {
		return "", fmt.Errorf("timestamp must start with 'p'")
	}
	if len(digits) <= 10 {
		return "", fmt.Errorf("timestamp too short")
	}
	return digits[:10] + "." + digits[10:], nil
}
