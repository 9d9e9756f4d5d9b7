package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while users still get a readable message.
var (
	// ErrInvalidSource is returned when --source is not an absolute http
	// or https URL.
	ErrInvalidSource = errors.New("invalid source: must be an http or https URL")

	// ErrProxyWithoutSource is returned when a proxy is configured but the
	// input is read from standard input.
	ErrProxyWithoutSource = errors.New("proxy requires --source: standard input is never proxied")

	// ErrOnionWithoutProxy is returned when the source is a Tor hidden
	// service but no SOCKS5 proxy is configured. .onion hosts do not
	// resolve outside Tor.
	ErrOnionWithoutProxy = errors.New("onion source requires a SOCKS5 proxy such as a Tor daemon (--proxy 127.0.0.1:9050)")

	// ErrInvalidTimeout is returned when the timeout is negative.
	// Use 0 to disable the timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
