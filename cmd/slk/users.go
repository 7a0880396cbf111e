package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/otomaru/slk/internal/config"
	"github.com/otomaru/slk/internal/jsonval"
	"github.com/otomaru/slk/internal/slack"
	"github.com/otomaru/slk/internal/storage"
)

// newAPIClient builds a Slack client from the resolved token.
func newAPIClient() (*slack.Client, error) {
	token, err := config.ResolveToken()
	if err != nil {
		return nil, err
	}
	return slack.NewClient(token), nil
}

// openUserCache opens the persistent user-name cache. Cache problems are
// never fatal; a nil cache means every name is fetched from the API.
func openUserCache() *storage.UserCache {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	cache, err := storage.OpenUserCache(filepath.Join(dir, "users.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open user cache: %v\n", err)
		return nil
	}
	return cache
}

// resolveUserNames maps the user IDs appearing in messages to display
// names, consulting the cache before the users.info API. Only IDs that look
// like user IDs (U-prefixed) are resolved.
func resolveUserNames(client *slack.Client, messages []slack.Message) (map[string]string, error) {
	unique := make(map[string]bool)
	for _, m := range messages {
		if strings.HasPrefix(m.User, "U") {
			unique[m.User] = true
		}
	}

	cache := openUserCache()
	if cache != nil {
		defer cache.Close()
	}

	names := make(map[string]string, len(unique))
	for id := range unique {
		if cache != nil {
			if name, found, err := cache.Get(id); err == nil && found {
				names[id] = name
				continue
			}
		}

		raw, err := client.FetchUserInfo(id)
		if err != nil {
			return nil, err
		}
		doc, err := jsonval.Parse(raw)
		if err != nil {
			return nil, err
		}
		name, err := slack.ExtractUserName(doc)
		if err != nil {
			return nil, err
		}

		names[id] = name
		if cache != nil {
			if err := cache.Put(id, name); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not update user cache: %v\n", err)
			}
		}
	}
	return names, nil
}

// renderRawMessages decodes a raw history/replies response and prints it
// as plain text with resolved user names.
func renderRawMessages(client *slack.Client, raw string) error {
	doc, err := jsonval.Parse(raw)
	if err != nil {
		return err
	}
	messages, err := slack.ExtractMessages(doc)
	if err != nil {
		return err
	}
	names, err := resolveUserNames(client, messages)
	if err != nil {
		return err
	}
	fmt.Println(slack.Render(messages, names))
	return nil
}
