package slack

import "testing"

func TestParseArchiveURL(t *testing.T) {
	t.Run("valid URL", func(t *testing.T) {
		got, err := ParseArchiveURL("https://myteam.slack.com/archives/C081VT5GLQH/p1770689887565249")
		if err != nil {
			t.Fatalf("ParseArchiveURL() error: %v", err)
		}
		want := Thread{ChannelID: "C081VT5GLQH", TS: "1770689887.565249"}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("group channel", func(t *testing.T) {
		got, err := ParseArchiveURL("https://myteam.slack.com/archives/G012ABC3DEF/p1234567890123456")
		if err != nil {
			t.Fatalf("ParseArchiveURL() error: %v", err)
		}
		want := Thread{ChannelID: "G012ABC3DEF", TS: "1234567890.123456"}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	errCases := []struct {
		name string
		url  string
	}{
		{"missing p prefix", "https://myteam.slack.com/archives/C081VT5GLQH/1770689887565249"},
		{"too few segments", "https://myteam.slack.com/archives/C081VT5GLQH"},
		{"no archives segment", "https://myteam.slack.com/messages/C081VT5GLQH/p1770689887565249"},
		{"empty", ""},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseArchiveURL(tt.url); err == nil {
				t.Errorf("ParseArchiveURL(%q) succeeded, want error", tt.url)
			}
		})
	}
}

func TestConvertTimestamp(t *testing.T) {
	got, err := convertTimestamp("p1770689887565249")
	if err != nil {
		t.Fatalf("convertTimestamp() error: %v", err)
	}
	if got != "1770689887.565249" {
		t.Errorf("got %q, want 1770689887.565249", got)
	}

	if _, err := convertTimestamp("p123"); err == nil {
		t.Error("expected error for short timestamp")
	}
	if _, err := convertTimestamp("1770689887565249"); err == nil {
		t.Error("expected error without p prefix")
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		ts   string
		want string
	}{
		{"1770689887.565249", "2026-02-10 02:18:07"},
		{"1770689900.000100", "2026-02-10 02:18:20"},
		{"0", "1970-01-01 00:00:00"},
		{"garbage", "1970-01-01 00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.ts, func(t *testing.T) {
			if got := FormatTimestamp(tt.ts); got != tt.want {
				t.Errorf("FormatTimestamp(%q) = %q, want %q", tt.ts, got, tt.want)
			}
		})
	}
}
