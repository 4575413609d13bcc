// Package network provides a pre-configured, shared HTTP client for API communication.
package network

import (
	"net/http"
	"time"
)

// Client is the singleton HTTP client shared across the application.
// It is tuned for long-lived keep-alive connections against a single API host.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

// newTransport initializes a tuned http.Transport with sensible pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 32
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}
