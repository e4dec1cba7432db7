package httpclient

import (
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// New creates an HTTP client tuned for long-lived calls to model providers.
// The timeout bounds the whole exchange, including a streamed body.
func New(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// WithBearer returns a client that sends token as a bearer credential on
// every request. An empty token returns base unchanged.
func WithBearer(base *http.Client, token string) *http.Client {
	if token == "" {
		return base
	}
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{
		Timeout:       base.Timeout,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Transport: &oauth2.Transport{
			Base:   base.Transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		},
	}
}
