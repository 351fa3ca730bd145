package stdlib

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/vm"
)

var (
	ErrDomainNotAllowed = errors.New("stdlib/http: domain not allowed")
	ErrLocalhostBlocked = errors.New("stdlib/http: localhost/internal access blocked")
	ErrResponseTooLarge = errors.New("stdlib/http: response size limit exceeded")
)

// HTTPSandbox restricts @http:get to an allowlist of domains.
type HTTPSandbox struct {
	AllowedDomains []string
	AllowLocalhost bool
	MaxBodySize    int64
	Client         *http.Client
}

func NewHTTPSandbox(allowedDomains []string) *HTTPSandbox {
	return &HTTPSandbox{
		AllowedDomains: allowedDomains,
		MaxBodySize:    5 << 20,
		Client:         &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch performs a GET request and returns the body.
func (s *HTTPSandbox) Fetch(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("stdlib/http: unsupported scheme %q", u.Scheme)
	}
	if !s.isAllowed(u.Hostname()) {
		return "", ErrDomainNotAllowed
	}
	if !s.AllowLocalhost && isLocalhost(u.Hostname()) {
		return "", ErrLocalhostBlocked
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(u.String())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("stdlib/http: %s returned %s", u.Host, resp.Status)
	}

	limit := s.MaxBodySize
	if limit <= 0 {
		limit = 5 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", ErrResponseTooLarge
	}
	return string(data), nil
}

func (s *HTTPSandbox) isAllowed(hostname string) bool {
	for _, domain := range s.AllowedDomains {
		if hostname == domain || strings.HasSuffix(hostname, "."+domain) {
			return true
		}
	}
	return false
}

func isLocalhost(hostname string) bool {
	h := strings.ToLower(hostname)
	return h == "localhost" || h == "127.0.0.1" || h == "::1" || strings.HasPrefix(h, "192.168.") || strings.HasPrefix(h, "10.")
}

func registerHTTP(r vm.Registry, opts Options) {
	if opts.HTTP == nil || len(opts.HTTP.AllowedDomains) == 0 {
		return
	}
	s := opts.HTTP
	r.Add("http", "get", func(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
		if err := arity(args, 1); err != nil {
			return value.Void, err
		}
		u, err := stringArg(args, 0)
		if err != nil {
			return value.Void, err
		}
		body, err := s.Fetch(u)
		if err != nil {
			return value.Void, err
		}
		return value.NewString(body), nil
	})
}
