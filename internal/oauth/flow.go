// Package oauth implements the interactive OAuth2 authorization flow:
// a CSRF-protected authorize URL, an ephemeral local HTTPS listener for the
// provider callback, and the code-for-token exchange.
package oauth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/otomaru/slk/internal/jsonval"
)

const (
	// DefaultRedirectURI must match the value registered with the provider;
	// changing the listen address requires updating both.
	DefaultRedirectURI = "https://127.0.0.1:9876"
	defaultListenAddr  = "127.0.0.1:9876"

	defaultAuthorizeURL = "https://slack.com/oauth/v2/authorize"
	defaultTokenURL     = "https://slack.com/api/oauth.v2.access"

	// userScopes are the user-token scopes requested at authorization.
	userScopes = "channels:history,channels:read,groups:history,groups:read,mpim:read,im:read,users:read"
)

// State is the stage a login attempt has reached.
type State int

const (
	StateIdle State = iota
	StateListening
	StateCallbackReceived
	StateValidated
	StateExchanged
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateCallbackReceived:
		return "callback-received"
	case StateValidated:
		return "validated"
	case StateExchanged:
		return "exchanged"
	}
	return "unknown"
}

// Flow drives one login attempt. All session state (CSRF token, TLS
// identity, listener socket) is ephemeral: created when Run starts and
// discarded when it returns.
type Flow struct {
	clientID     string
	clientSecret string

	authorizeURL string
	tokenURL     string
	redirectURI  string
	listenAddr   string

	httpClient *http.Client
	launch     func(url string) error
	state      State
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithTokenURL overrides the token exchange endpoint.
func WithTokenURL(u string) FlowOption {
	return func(f *Flow) { f.tokenURL = u }
}

// WithListenAddr overrides the callback listen address.
func WithListenAddr(addr string) FlowOption {
	return func(f *Flow) { f.listenAddr = addr }
}

// WithRedirectURI overrides the redirect URI sent to the provider.
func WithRedirectURI(u string) FlowOption {
	return func(f *Flow) { f.redirectURI = u }
}

// WithBrowserLauncher overrides how the authorize URL is opened.
func WithBrowserLauncher(launch func(url string) error) FlowOption {
	return func(f *Flow) { f.launch = launch }
}

// NewFlow creates a login attempt in the idle state.
func NewFlow(clientID, clientSecret string, opts ...FlowOption) *Flow {
	f := &Flow{
		clientID:     clientID,
		clientSecret: clientSecret,
		authorizeURL: defaultAuthorizeURL,
		tokenURL:     defaultTokenURL,
		redirectURI:  DefaultRedirectURI,
		listenAddr:   defaultListenAddr,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		launch:       openBrowser,
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the stage the attempt has reached.
func (f *Flow) State() State { return f.state }

// Run executes the flow and returns the access token. Every failure is
// terminal for the attempt; the caller must start a new Flow to retry.
// The token is never logged.
func (f *Flow) Run() (string, error) {
	csrfToken, err := generateState()
	if err != nil {
		return "", err
	}

	listener, err := newCallbackListener(f.listenAddr)
	if err != nil {
		return "", err
	}
	defer listener.Close()
	f.state = StateListening

	authURL := f.buildAuthorizeURL(csrfToken)
	fmt.Fprintln(os.Stderr, "Opening browser for authorization...")
	fmt.Fprintln(os.Stderr, "If prompted about the certificate, click 'Advanced' and 'Proceed'.")
	fmt.Fprintf(os.Stderr, "If the browser doesn't open, visit:\n  %s\n", authURL)
	// Launch failure is non-fatal: the URL was just printed for manual use.
	if err := f.launch(authURL); err != nil {
		fmt.Fprintf(os.Stderr, "Could not open browser: %v\n", err)
	}

	fmt.Fprintf(os.Stderr, "Waiting for callback on %s ...\n", f.redirectURI)
	request, err := listener.Wait()
	if err != nil {
		return "", err
	}
	f.state = StateCallbackReceived

	code, callbackState, err := extractCallbackParams(request)
	if err != nil {
		return "", err
	}
	if callbackState != csrfToken {
		return "", ErrCsrfMismatch
	}
	f.state = StateValidated

	token, err := f.exchangeCode(code)
	if err != nil {
		return "", err
	}
	f.state = StateExchanged
	return token, nil
}

// generateState produces the per-attempt CSRF token: 16 bytes of OS entropy
// hex-encoded to 32 characters.
func generateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (f *Flow) buildAuthorizeURL(state string) string {
	return fmt.Sprintf("%s?client_id=%s&user_scope=%s&redirect_uri=%s&state=%s",
		f.authorizeURL, f.clientID, userScopes, url.QueryEscape(f.redirectURI), state)
}

// extractCallbackParams pulls code and state out of the callback request
// line. Only the path and query of the request line are interpreted. The
// first occurrence of each parameter wins; empty values count as absent.
func extractCallbackParams(request string) (code, state string, err error) {
	fields := strings.Fields(request)
	if len(fields) < 2 {
		return "", "", fmt.Errorf("invalid HTTP request")
	}
	path := fields[1]

	idx := strings.IndexByte(path, '?')
	if idx < 0 {
		return "", "", fmt.Errorf("no query string in callback")
	}
	query := path[idx+1:]

	for _, param := range strings.Split(query, "&") {
		if v, ok := strings.CutPrefix(param, "code="); ok && v != "" && code == "" {
			code = v
		} else if v, ok := strings.CutPrefix(param, "state="); ok && v != "" && state == "" {
			state = v
		}
	}

	if code == "" {
		return "", "", &MissingParameterError{Name: "code"}
	}
	if state == "" {
		return "", "", &MissingParameterError{Name: "state"}
	}
	return code, state, nil
}

// exchangeCode trades the single-use authorization code for an access
// token via a form-encoded POST to the token endpoint.
func (f *Flow) exchangeCode(code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", f.clientID)
	form.Set("client_secret", f.clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", f.redirectURI)

	resp, err := f.httpClient.PostForm(f.tokenURL, form)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	doc, err := jsonval.Parse(string(body))
	if err != nil {
		return "", fmt.Errorf("parsing token exchange response: %w", err)
	}

	if ok, _ := doc.GetBool("ok"); !ok {
		msg := "unknown error"
		if s, found := doc.GetString("error"); found {
			msg = s
		}
		return "", &ProviderError{Message: msg}
	}

	authedUser, ok := doc.Get("authed_user")
	if !ok {
		return "", &ProviderError{Message: "missing authed_user.access_token in response"}
	}
	token, ok := authedUser.GetString("access_token")
	if !ok {
		return "", &ProviderError{Message: "missing authed_user.access_token in response"}
	}
	return token, nil
}
