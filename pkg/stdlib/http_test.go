package stdlib_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/stdlib"
)

func TestHTTPSandboxDomainBlocking(t *testing.T) {
	sandbox := stdlib.NewHTTPSandbox([]string{"google.com"})

	_, err := sandbox.Fetch("http://malicious.com")
	if !errors.Is(err, stdlib.ErrDomainNotAllowed) {
		t.Errorf("expected ErrDomainNotAllowed, got %v", err)
	}
}

func TestHTTPSandboxLocalhostBlocking(t *testing.T) {
	sandbox := stdlib.NewHTTPSandbox([]string{"localhost"})

	_, err := sandbox.Fetch("http://localhost:8080")
	if !errors.Is(err, stdlib.ErrLocalhostBlocked) {
		t.Errorf("expected ErrLocalhostBlocked, got %v", err)
	}
}

func TestHTTPSandboxFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(404)
			return
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	sandbox := stdlib.NewHTTPSandbox([]string{u.Hostname()})
	sandbox.AllowLocalhost = true

	res, err := sandbox.Fetch(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if res != "hello" {
		t.Errorf("got %s", res)
	}

	if _, err := sandbox.Fetch(server.URL + "/missing"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 error, got %v", err)
	}

	sandbox.MaxBodySize = 2
	if _, err := sandbox.Fetch(server.URL); !errors.Is(err, stdlib.ErrResponseTooLarge) {
		t.Errorf("expected ErrResponseTooLarge, got %v", err)
	}
}

func TestHTTPModule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	sandbox := stdlib.NewHTTPSandbox([]string{u.Hostname()})
	sandbox.AllowLocalhost = true

	s := newScript(t, "body = @http:get url\nstatus = @json:get body \"status\"\n", stdlib.Options{HTTP: sandbox})
	s.m.Set("url", value.NewString(server.URL))
	if err := s.m.Run(0); err != nil {
		t.Fatal(err)
	}
	if got := s.get(t, "status").Str(); got != "ok" {
		t.Errorf("status = %q", got)
	}
}
