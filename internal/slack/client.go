// Package slack provides the Slack Web API client and the extraction of
// messages, conversations, and user names from decoded API responses.
package slack

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Slack Web API root.
const DefaultBaseURL = "https://slack.com/api"

// Client fetches raw response bodies from the Slack Web API with a bearer
// token. It fetches a single page per call; callers decode the body with
// the jsonval package.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API root, for tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// NewClient creates a client using the given bearer token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:      token,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs an authenticated GET and returns the body text.
func (c *Client) get(method string, query url.Values) (string, error) {
	u := c.baseURL + "/" + method
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s response: %w", method, err)
	}
	return string(body), nil
}

// FetchConversationHistory returns the raw conversations.history response
// for a channel.
func (c *Client) FetchConversationHistory(channelID string) (string, error) {
	q := url.Values{}
	q.Set("channel", channelID)
	return c.get("conversations.history", q)
}

// FetchThreadReplies returns the raw conversations.replies response for a
// thread rooted at ts.
func (c *Client) FetchThreadReplies(channelID, ts string) (string, error) {
	q := url.Values{}
	q.Set("channel", channelID)
	q.Set("ts", ts)
	return c.get("conversations.replies", q)
}

// FetchConversationsList returns the raw conversations.list response.
func (c *Client) FetchConversationsList() (string, error) {
	return c.get("conversations.list", nil)
}

// FetchUserInfo returns the raw users.info response for a user ID.
func (c *Client) FetchUserInfo(userID string) (string, error) {
	q := url.Values{}
	q.Set("user", userID)
	return c.get("users.info", q)
}
