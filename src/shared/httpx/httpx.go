package httpx

import (
	"net"
	"net/http"
	"time"
)

// NewDefault builds an HTTP client with connection pooling and an overall
// request timeout. Callers that need per-call deadlines should still pass a
// context; the client timeout is the hard upper bound.
func NewDefault(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
