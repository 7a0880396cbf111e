package slack

import (
	"fmt"
	"strings"
)

// Render formats messages as plain text, one per line:
// "YYYY-MM-DD HH:MM:SS @name text". Users without a resolved name are shown
// by their raw ID.
func Render(messages []Message, names map[string]string) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		display := m.User
		if name, ok := names[m.User]; ok {
			display = "@" + name
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", FormatTimestamp(m.TS), display, m.Text))
	}
	return strings.Join(lines, "\n")
}
