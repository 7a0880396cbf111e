package oauth

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGenerateState(t *testing.T) {
	s1, err := generateState()
	if err != nil {
		t.Fatalf("generateState() error: %v", err)
	}
	s2, err := generateState()
	if err != nil {
		t.Fatalf("generateState() error: %v", err)
	}

	if len(s1) != 32 {
		t.Errorf("state length = %d, want 32", len(s1))
	}
	for _, c := range s1 {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("state contains non-hex character %q: %s", c, s1)
		}
	}
	if s1 == s2 {
		t.Errorf("two generated states are equal: %s", s1)
	}
}

func TestExtractCallbackParams(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		code, state, err := extractCallbackParams("GET /?code=abc123&state=deadbeef HTTP/1.1\r\nHost: localhost\r\n")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if code != "abc123" || state != "deadbeef" {
			t.Errorf("got code=%q state=%q", code, state)
		}
	})

	t.Run("reversed order", func(t *testing.T) {
		code, state, err := extractCallbackParams("GET /?state=mystate&code=mycode HTTP/1.1\r\n")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if code != "mycode" || state != "mystate" {
			t.Errorf("got code=%q state=%q", code, state)
		}
	})

	t.Run("first occurrence wins on repeats", func(t *testing.T) {
		code, state, err := extractCallbackParams("GET /?code=first&state=s1&code=second&state=s2 HTTP/1.1\r\n")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if code != "first" || state != "s1" {
			t.Errorf("got code=%q state=%q, want first occurrences", code, state)
		}
	})

	t.Run("missing code", func(t *testing.T) {
		_, _, err := extractCallbackParams("GET /?state=abc HTTP/1.1\r\n")
		var mp *MissingParameterError
		if !errors.As(err, &mp) {
			t.Fatalf("error %T, want *MissingParameterError", err)
		}
		if mp.Name != "code" {
			t.Errorf("Name = %q, want code", mp.Name)
		}
	})

	t.Run("missing state", func(t *testing.T) {
		_, _, err := extractCallbackParams("GET /?code=abc HTTP/1.1\r\n")
		var mp *MissingParameterError
		if !errors.As(err, &mp) {
			t.Fatalf("error %T, want *MissingParameterError", err)
		}
		if mp.Name != "state" {
			t.Errorf("Name = %q, want state", mp.Name)
		}
	})

	t.Run("empty values count as absent", func(t *testing.T) {
		_, _, err := extractCallbackParams("GET /?code=&state=abc HTTP/1.1\r\n")
		var mp *MissingParameterError
		if !errors.As(err, &mp) || mp.Name != "code" {
			t.Fatalf("error = %v, want missing code", err)
		}
	})

	t.Run("no query string", func(t *testing.T) {
		if _, _, err := extractCallbackParams("GET / HTTP/1.1\r\n"); err == nil {
			t.Error("expected error for request without query string")
		}
	})

	t.Run("empty request", func(t *testing.T) {
		if _, _, err := extractCallbackParams(""); err == nil {
			t.Error("expected error for empty request")
		}
	})
}

func TestExchangeCode(t *testing.T) {
	newFlowForServer := func(srv *httptest.Server) *Flow {
		return NewFlow("id", "secret", WithTokenURL(srv.URL))
	}

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parsing form: %v", err)
			}
			if got := r.PostForm.Get("code"); got != "thecode" {
				t.Errorf("code = %q, want thecode", got)
			}
			if got := r.PostForm.Get("client_id"); got != "id" {
				t.Errorf("client_id = %q, want id", got)
			}
			fmt.Fprint(w, `{"ok": true, "authed_user": {"id": "U1", "access_token": "xoxp-token"}}`)
		}))
		defer srv.Close()

		token, err := newFlowForServer(srv).exchangeCode("thecode")
		if err != nil {
			t.Fatalf("exchangeCode() error: %v", err)
		}
		if token != "xoxp-token" {
			t.Errorf("token = %q, want xoxp-token", token)
		}
	})

	t.Run("provider error surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"ok": false, "error": "invalid_code"}`)
		}))
		defer srv.Close()

		_, err := newFlowForServer(srv).exchangeCode("thecode")
		var pe *ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("error %T, want *ProviderError", err)
		}
		if pe.Message != "invalid_code" {
			t.Errorf("Message = %q, want invalid_code", pe.Message)
		}
	})

	t.Run("missing access token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"ok": true, "authed_user": {"id": "U1"}}`)
		}))
		defer srv.Close()

		_, err := newFlowForServer(srv).exchangeCode("thecode")
		var pe *ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("error %T, want *ProviderError", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused

		_, err := newFlowForServer(srv).exchangeCode("thecode")
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("error %T, want *TransportError", err)
		}
	})

	t.Run("malformed response body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"ok": true,`)
		}))
		defer srv.Close()

		if _, err := newFlowForServer(srv).exchangeCode("thecode"); err == nil {
			t.Error("expected error for malformed response")
		}
	})
}

func TestBuildAuthorizeURL(t *testing.T) {
	f := NewFlow("myclient", "secret")
	got := f.buildAuthorizeURL("deadbeef")

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("authorize URL does not parse: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "myclient" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("state") != "deadbeef" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("redirect_uri") != DefaultRedirectURI {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if !strings.Contains(q.Get("user_scope"), "channels:history") {
		t.Errorf("user_scope = %q", q.Get("user_scope"))
	}
}

// freePort grabs an ephemeral loopback port for a flow-level test.
func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("finding free port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

// sendCallback dials the listener over TLS and delivers a callback request.
// The state is taken from the authorize URL the flow handed to the browser
// launcher, optionally mangled first.
func sendCallback(t *testing.T, addr, code, state string) {
	t.Helper()
	var conn *tls.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = tls.Dial("tcp", addr, &tls.Config{InsecureSkipVerify: true})
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Errorf("dialing listener: %v", err)
		return
	}
	defer conn.Close()
	fmt.Fprintf(conn, "GET /?code=%s&state=%s HTTP/1.1\r\nHost: 127.0.0.1\r\n\r\n", code, state)
	buf := make([]byte, 1024)
	conn.Read(buf)
}

func stateFromAuthURL(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	if err != nil {
		t.Errorf("parsing authorize URL: %v", err)
		return ""
	}
	return u.Query().Get("state")
}

func TestFlowRun(t *testing.T) {
	t.Run("completes on valid callback", func(t *testing.T) {
		var exchanges atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			exchanges.Add(1)
			fmt.Fprint(w, `{"ok": true, "authed_user": {"access_token": "xoxp-e2e"}}`)
		}))
		defer srv.Close()

		addr := freePort(t)
		f := NewFlow("id", "secret",
			WithTokenURL(srv.URL),
			WithListenAddr(addr),
			WithBrowserLauncher(func(authURL string) error {
				go sendCallback(t, addr, "code123", stateFromAuthURL(t, authURL))
				return nil
			}))

		token, err := f.Run()
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if token != "xoxp-e2e" {
			t.Errorf("token = %q, want xoxp-e2e", token)
		}
		if f.State() != StateExchanged {
			t.Errorf("state = %v, want %v", f.State(), StateExchanged)
		}
		if exchanges.Load() != 1 {
			t.Errorf("exchange count = %d, want 1", exchanges.Load())
		}
	})

	t.Run("csrf mismatch aborts before exchange", func(t *testing.T) {
		var exchanges atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			exchanges.Add(1)
			fmt.Fprint(w, `{"ok": true}`)
		}))
		defer srv.Close()

		addr := freePort(t)
		f := NewFlow("id", "secret",
			WithTokenURL(srv.URL),
			WithListenAddr(addr),
			WithBrowserLauncher(func(authURL string) error {
				go sendCallback(t, addr, "code123", "not-the-real-state")
				return nil
			}))

		_, err := f.Run()
		if !errors.Is(err, ErrCsrfMismatch) {
			t.Fatalf("Run() error = %v, want ErrCsrfMismatch", err)
		}
		if exchanges.Load() != 0 {
			t.Errorf("exchange attempted %d times after CSRF mismatch", exchanges.Load())
		}
		if f.State() != StateCallbackReceived {
			t.Errorf("state = %v, want %v", f.State(), StateCallbackReceived)
		}
	})

	t.Run("browser launch failure is non-fatal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"ok": true, "authed_user": {"access_token": "xoxp-manual"}}`)
		}))
		defer srv.Close()

		addr := freePort(t)
		f := NewFlow("id", "secret",
			WithTokenURL(srv.URL),
			WithListenAddr(addr),
			WithBrowserLauncher(func(authURL string) error {
				go sendCallback(t, addr, "c", stateFromAuthURL(t, authURL))
				return fmt.Errorf("no browser available")
			}))

		token, err := f.Run()
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if token != "xoxp-manual" {
			t.Errorf("token = %q, want xoxp-manual", token)
		}
	})
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateIdle:             "idle",
		StateListening:        "listening",
		StateCallbackReceived: "callback-received",
		StateValidated:        "validated",
		StateExchanged:        "exchanged",
	}
	for s, want := range states {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
