// Package proxy builds HTTP clients that tunnel the AI API calls through a
// SOCKS5 proxy, for deployments where the API is not directly reachable.
package proxy

import (
	"context"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultTimeout bounds one API round trip. Transcription uploads carry a
// whole WAV clip, so this is generous.
const DefaultTimeout = 120 * time.Second

// NewSocksClient returns an http.Client that dials through the SOCKS5 proxy
// at socksAddr. A non-positive timeout falls back to DefaultTimeout.
func NewSocksClient(socksAddr string, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialer, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
