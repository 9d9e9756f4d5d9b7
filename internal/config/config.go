package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/linkex/internal/fetch"
)

// Default configuration values.
const (
	// DefaultTimeout bounds the source fetch, body included.
	DefaultTimeout = fetch.DefaultTimeout

	// AppName is the application name used for XDG directory paths.
	AppName = "linkex"

	// DefaultUserAgent identifies linkex in HTTP requests.
	DefaultUserAgent = fetch.DefaultUserAgent

	// DefaultMaxBodySize limits the response body size read from a source.
	// Larger pages fail with fetch.ErrBodyTooLarge.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize
)

// Config holds all configuration options for one linkex run.
// It is populated from the configuration file and CLI flags and passed
// through the application rather than kept in global state.
type Config struct {
	// Base is the base URL prepended to relative links.
	// Empty means relative links are printed as found.
	Base string

	// Filter keeps only links containing this literal, case-sensitive
	// substring. Empty disables filtering.
	Filter string

	// All selects full-text extraction (href values, bare http(s) URLs and
	// bare www URLs). When false only href values are extracted.
	All bool

	// Source is the http(s) URL to fetch. Empty means read standard input.
	Source string

	// ProxyAddress is a SOCKS5 proxy ("host:port") used for the source
	// fetch, e.g. a Tor daemon at 127.0.0.1:9050. Empty means direct.
	ProxyAddress string

	// Headers are extra HTTP request headers sent to the source.
	Headers map[string]string

	// Timeout is the source fetch timeout. Zero disables it.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent to the source.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// Verbose enables debug logging on standard error.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .linkex is searched in the current and home directories.
	ConfigFilePath string

	// SaveToDB records the run in the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/linkex on Linux).
	DBDir string
}

// OnionSuffix is the top-level domain of Tor hidden services.
const OnionSuffix = ".onion"

// IsOnionHost reports whether host (without port) is a Tor hidden service.
func IsOnionHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(host, ".")), OnionSuffix)
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Headers:     make(map[string]string),
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for linkex.
// On Linux: ~/.local/share/linkex
// On macOS: ~/Library/Application Support/linkex
// On Windows: %LOCALAPPDATA%\linkex
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkex.
// On Linux: ~/.config/linkex
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Apply copies the settings of sc into c. Zero values in sc leave c
// unchanged, and headers are merged key by key.
func (c *Config) Apply(sc SourceConfig) {
	if sc.Base != "" {
		c.Base = sc.Base
	}
	if sc.Filter != "" {
		c.Filter = sc.Filter
	}
	if sc.All {
		c.All = true
	}
	if sc.Proxy != "" {
		c.ProxyAddress = sc.Proxy
	}
	if sc.Timeout > 0 {
		c.Timeout = sc.Timeout
	}
	if sc.UserAgent != "" {
		c.UserAgent = sc.UserAgent
	}
	if sc.MaxBodySize > 0 {
		c.MaxBodySize = sc.MaxBodySize
	}
	if len(sc.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range sc.Headers {
			c.Headers[k] = v
		}
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.Source != "" {
		u, err := url.Parse(c.Source)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidSource
		}
		if IsOnionHost(u.Hostname()) && c.ProxyAddress == "" {
			return ErrOnionWithoutProxy
		}
	}

	// A proxy only applies to fetching; stdin input has nothing to proxy.
	if c.ProxyAddress != "" && c.Source == "" {
		return ErrProxyWithoutSource
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
