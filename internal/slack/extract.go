package slack

import (
	"fmt"

	"github.com/otomaru/slk/internal/jsonval"
)

// APIError is a Slack API response with ok:false. Needed and Provided carry
// the scope strings the API reports on missing_scope errors.
type APIError struct {
	Code     string
	Needed   string
	Provided string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("Slack API error: %s", e.Code)
	if e.Needed != "" {
		msg += fmt.Sprintf("\n  needed scope: %s", e.Needed)
	}
	if e.Provided != "" {
		msg += fmt.Sprintf("\n  provided scopes: %s", e.Provided)
	}
	return msg
}

// Message is one message from a history or replies response.
type Message struct {
	User string
	Text string
	TS   string
}

// Conversation is one entry from a conversations.list response.
type Conversation struct {
	ID   string
	Name string
}

// checkOK validates the top-level ok indicator every API response carries.
// A missing indicator is an error; ok:false becomes an APIError with any
// scope details the response included.
func checkOK(response jsonval.Value) error {
	ok, found := response.GetBool("ok")
	if !found {
		return fmt.Errorf("missing 'ok' field in response")
	}
	if ok {
		return nil
	}

	code := "unknown error"
	if s, found := response.GetString("error"); found {
		code = s
	}
	needed, _ := response.GetString("needed")
	provided, _ := response.GetString("provided")
	return &APIError{Code: code, Needed: needed, Provided: provided}
}

// ExtractMessages pulls the messages array out of a decoded history or
// replies response. The author falls back user -> username -> bot_id so
// bot and app messages still render.
func ExtractMessages(response jsonval.Value) ([]Message, error) {
	if err := checkOK(response); err != nil {
		return nil, err
	}

	raw, ok := response.Get("messages")
	if !ok {
		return nil, fmt.Errorf("missing 'messages' array in response")
	}
	items, ok := raw.AsArray()
	if !ok {
		return nil, fmt.Errorf("missing 'messages' array in response")
	}

	messages := make([]Message, 0, len(items))
	for _, item := range items {
		user, ok := item.GetString("user")
		if !ok {
			user, ok = item.GetString("username")
		}
		if !ok {
			user, ok = item.GetString("bot_id")
		}
		if !ok {
			user = "unknown"
		}

		text, ok := item.GetString("text")
		if !ok {
			text = ""
		}

		ts, ok := item.GetString("ts")
		if !ok {
			ts = "0"
		}

		messages = append(messages, Message{User: user, Text: text, TS: ts})
	}
	return messages, nil
}

// ExtractConversations pulls the channels array out of a decoded
// conversations.list response.
func ExtractConversations(response jsonval.Value) ([]Conversation, error) {
	if err := checkOK(response); err != nil {
		return nil, err
	}

	raw, ok := response.Get("channels")
	if !ok {
		return nil, fmt.Errorf("missing 'channels' array in response")
	}
	items, ok := raw.AsArray()
	if !ok {
		return nil, fmt.Errorf("missing 'channels' array in response")
	}

	conversations := make([]Conversation, 0, len(items))
	for _, item := range items {
		id, _ := item.GetString("id")
		name, _ := item.GetString("name")
		conversations = append(conversations, Conversation{ID: id, Name: name})
	}
	return conversations, nil
}

// ExtractUserName resolves the display name from a decoded users.info
// response, preferring profile.display_name, then real_name, then name.
func ExtractUserName(response jsonval.Value) (string, error) {
	if err := checkOK(response); err != nil {
		return "", err
	}

	user, ok := response.Get("user")
	if !ok {
		return "", fmt.Errorf("missing 'user' field in response")
	}

	if profile, ok := user.Get("profile"); ok {
		if name, ok := profile.GetString("display_name"); ok && name != "" {
			return name, nil
		}
	}
	if name, ok := user.GetString("real_name"); ok && name != "" {
		return name, nil
	}
	if name, ok := user.GetString("name"); ok && name != "" {
		return name, nil
	}
	return "", fmt.Errorf("no user name found in response")
}
