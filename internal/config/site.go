package config

import (
	"net/url"
	"time"
)

// SourceConfig holds settings that can be given as defaults or per source
// host in the configuration file.
type SourceConfig struct {
	// Base is the base URL for relative links.
	Base string `yaml:"base,omitempty"`

	// Filter is the substring filter.
	Filter string `yaml:"filter,omitempty"`

	// All enables full-text extraction.
	All bool `yaml:"all,omitempty"`

	// Proxy is a SOCKS5 proxy address ("host:port").
	Proxy string `yaml:"proxy,omitempty"`

	// Headers are extra HTTP request headers, e.g. Cookie or Authorization.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Timeout is the fetch timeout, written as a Go duration ("45s").
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxBodySize limits the response body size in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`
}

// File represents the structure of the .linkex configuration file.
type File struct {
	// Defaults apply to every run.
	Defaults SourceConfig `yaml:"defaults,omitempty"`

	// Sources maps a source host (e.g. "example.com" or "example.com:8080")
	// to settings that override Defaults when fetching from that host.
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`
}

// GetSourceConfig returns the settings for the given source URL: the
// defaults merged with the entry for its host, if any. An empty or
// unparsable URL yields the defaults.
func (cf *File) GetSourceConfig(sourceURL string) SourceConfig {
	result := cf.Defaults
	if result.Headers != nil {
		headers := make(map[string]string, len(result.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	if sourceURL == "" {
		return result
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return result
	}

	override, ok := cf.Sources[u.Host]
	if !ok {
		override, ok = cf.Sources[u.Hostname()]
	}
	if !ok {
		return result
	}

	return mergeSourceConfig(result, override)
}

// mergeSourceConfig overlays the non-zero fields of override onto base.
func mergeSourceConfig(base, override SourceConfig) SourceConfig {
	result := base

	if override.Base != "" {
		result.Base = override.Base
	}
	if override.Filter != "" {
		result.Filter = override.Filter
	}
	if override.All {
		result.All = true
	}
	if override.Proxy != "" {
		result.Proxy = override.Proxy
	}
	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	if override.MaxBodySize > 0 {
		result.MaxBodySize = override.MaxBodySize
	}
	if len(override.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range override.Headers {
			result.Headers[k] = v
		}
	}

	return result
}
