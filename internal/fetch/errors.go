package fetch

import "errors"

// Input acquisition errors.
// All of them are fatal for a run; callers wrap them with context and
// errors.Is still matches.
var (
	// ErrInvalidSourceURL is returned when the source URL cannot be parsed
	// or does not use the http or https scheme.
	ErrInvalidSourceURL = errors.New("invalid source URL: expected an http or https URL")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrUnexpectedStatus is returned when the server answers with a
	// non-2xx status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrNotText is returned when the response body is not textual.
	ErrNotText = errors.New("response is not text")

	// ErrBodyTooLarge is returned when the response body is larger than
	// the configured maximum size.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrInvalidUTF8 is returned when the input is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("input is not valid UTF-8")
)
