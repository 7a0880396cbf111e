package slack

import (
	"strconv"
	"strings"
	"time"
)

// FormatTimestamp renders a Slack timestamp string such as
// "1770689887.565249" as "2026-02-10 02:18:07" in UTC. Unparseable input
// formats as the epoch.
func FormatTimestamp(ts string) string {
	secStr, _, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		sec = 0
	}
	return time.Unix(sec, 0).UTC().Format("2006-01-02 15:04:05")
}
