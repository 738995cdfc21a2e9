package executor

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// DescribeTransportError turns a failed round trip into a short message for
// display. Unrecognised errors keep their original text behind a prefix.
func DescribeTransportError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout - the server took longer than the configured timeout"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "Request timeout - the server took longer than the configured timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "DNS resolution failed - verify the base URL hostname and network"
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "Connection refused - check that the market-data server is running"
	case errors.Is(err, syscall.ECONNRESET):
		return "Connection reset by server"
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return "Network unreachable - check network connection"
	}

	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "x509") || strings.Contains(errLower, "certificate"):
		return "TLS certificate verification failed: " + err.Error()
	case strings.Contains(errLower, "unsupported protocol"):
		return "Invalid URL - the base URL must use http or https"
	case strings.Contains(errLower, "eof"):
		return "Connection closed unexpectedly"
	}

	return "Request failed: " + err.Error()
}
