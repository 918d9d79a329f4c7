package pkg

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUserIP(t *testing.T) {
	proxies, err := NewTrustedProxies([]string{"127.0.0.1", "172.20.0.0/16"})
	require.NoError(t, err)

	cases := []struct {
		name       string
		remoteAddr string
		realIP     string
		forwarded  string
		expectedIP string
		expectErr  bool
	}{
		{name: "remote-addr", remoteAddr: "83.12.53.65:2145", expectedIP: "83.12.53.65"},
		{name: "real-ip", remoteAddr: "172.20.0.1:60102", realIP: "111.12.56.65", expectedIP: "111.12.56.65"},
		{name: "forwarded-for", remoteAddr: "172.20.0.1:60102", forwarded: "111.12.56.65, 10.0.0.1", expectedIP: "111.12.56.65"},
		{name: "trusted proxy without headers", remoteAddr: "127.0.0.1:4000", expectedIP: "127.0.0.1"},
		{name: "real-ip from untrusted peer", remoteAddr: "83.12.53.65:2145", realIP: "1.2.3.4", expectedIP: "83.12.53.65"},
		{name: "forwarded-for from untrusted peer", remoteAddr: "83.12.53.65:2145", forwarded: "1.2.3.4", expectedIP: "83.12.53.65"},
		{name: "ipv6", remoteAddr: "[::1]:8080", realIP: "1.2.3.4", expectedIP: "::1"},
		{name: "invalid", remoteAddr: "not-an-ip", expectErr: true},
		{name: "invalid forwarded ip", remoteAddr: "127.0.0.1:4000", realIP: "nope", expectErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.realIP != "" {
				req.Header.Set("X-Real-Ip", tc.realIP)
			}
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}

			ip, err := ReadUserIP(req, proxies)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedIP, ip)
		})
	}
}

func TestReadUserIP_RotatingHeaderFromUntrustedPeer(t *testing.T) {
	for _, proxies := range []*TrustedProxies{nil, {}} {
		for i := 0; i < 50; i++ {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = "203.0.113.7:51000"
			req.Header.Set("X-Real-Ip", fmt.Sprintf("10.0.0.%d", i))
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.1.%d", i))

			ip, err := ReadUserIP(req, proxies)
			require.NoError(t, err)
			assert.Equal(t, "203.0.113.7", ip)
		}
	}
}

func TestNewTrustedProxies(t *testing.T) {
	proxies, err := NewTrustedProxies(nil)
	require.NoError(t, err)
	assert.Empty(t, proxies.nets)

	proxies, err = NewTrustedProxies([]string{" 10.0.0.1 ", "::1", "192.168.0.0/24"})
	require.NoError(t, err)
	assert.Len(t, proxies.nets, 3)

	_, err = NewTrustedProxies([]string{"localhost"})
	assert.Error(t, err)
	_, err = NewTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}
