package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"
	"golang.org/x/text/transform"
)

// Defaults for HTTPSource.
const (
	// DefaultTimeout bounds the whole request, body included.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies linkex in HTTP requests.
	DefaultUserAgent = "linkex/1.0 (+https://github.com/nao1215/linkex)"

	// DefaultMaxBodySize is the largest response body accepted.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// maxRedirects stops redirect loops.
	maxRedirects = 10
)

// HTTPSource fetches its input with a single HTTP GET request.
type HTTPSource struct {
	// url is the parsed source URL.
	url *url.URL

	// client performs the request. It is built by NewHTTPSource.
	client *http.Client

	// userAgent is sent as the User-Agent header.
	userAgent string

	// headers are extra request headers, e.g. Authorization or Cookie.
	headers map[string]string

	// maxBodySize is the largest accepted body in bytes.
	maxBodySize int64

	// proxyAddress is the SOCKS5 proxy in host:port form, empty for a
	// direct connection.
	proxyAddress string

	// timeout is the client timeout. Zero disables it.
	timeout time.Duration

	logger *slog.Logger
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithTimeout sets the request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		s.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithHeaders adds request headers. Empty names or values are skipped.
func WithHeaders(headers map[string]string) HTTPOption {
	return func(s *HTTPSource) {
		for k, v := range headers {
			if k == "" || v == "" {
				continue
			}
			s.headers[k] = v
		}
	}
}

// WithMaxBodySize sets the largest accepted body in bytes. A larger body
// fails with ErrBodyTooLarge. Values <= 0 keep the default.
func WithMaxBodySize(size int64) HTTPOption {
	return func(s *HTTPSource) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithProxy routes the request through the SOCKS5 proxy at address
// ("host:port"). An empty address means a direct connection.
func WithProxy(address string) HTTPOption {
	return func(s *HTTPSource) {
		s.proxyAddress = address
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(s *HTTPSource) {
		s.logger = logger
	}
}

// NewHTTPSource creates a Source that fetches rawURL.
// The URL must be absolute with an http or https scheme.
func NewHTTPSource(rawURL string, opts ...HTTPOption) (*HTTPSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourceURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSourceURL, rawURL)
	}

	s := &HTTPSource{
		url:         u,
		userAgent:   DefaultUserAgent,
		headers:     make(map[string]string),
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	transport, err := s.newTransport()
	if err != nil {
		return nil, err
	}

	s.client = &http.Client{
		Transport: transport,
		Timeout:   s.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return s, nil
}

// newTransport builds the HTTP transport, dialing through the SOCKS5
// proxy when one is configured.
func (s *HTTPSource) newTransport() (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport

	if s.proxyAddress == "" {
		return transport, nil
	}

	if !isValidProxyAddress(s.proxyAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, s.proxyAddress)
	}

	// Tor's SOCKS port does not require authentication.
	dialer, err := proxy.SOCKS5("tcp", s.proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}

	return transport, nil
}

// Read implements Source.
func (s *HTTPSource) Read(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	s.logger.Debug("fetching source",
		"url", s.url.String(),
		"proxy", s.proxyAddress,
		"timeout", s.timeout,
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %s", ErrUnexpectedStatus, s.Name(), resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > s.maxBodySize {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, s.Name(), s.maxBodySize)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	if !isTextual(contentType) {
		return "", fmt.Errorf("%w: %s has content type %q", ErrNotText, s.Name(), contentType)
	}

	decoded, err := decodeBody(body, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", s.Name(), err)
	}
	if decoded != nil {
		body = decoded
	}
	if !utf8.Valid(body) {
		return "", fmt.Errorf("%w: %s", ErrInvalidUTF8, s.Name())
	}

	s.logger.Debug("source fetched",
		"url", s.url.String(),
		"status", resp.StatusCode,
		"contentType", contentType,
		"bytes", len(body),
	)

	return string(body), nil
}

// Name implements Source. It is the source URL.
func (s *HTTPSource) Name() string {
	return s.url.String()
}

// decodeBody converts body to UTF-8 when contentType declares another
// known charset. It returns nil when body needs no conversion: no charset,
// a UTF-8 charset or a label the charset package does not know.
func decodeBody(body []byte, contentType string) ([]byte, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return nil, nil
	}

	enc, name := charset.Lookup(params["charset"])
	if enc == nil || name == "utf-8" {
		return nil, nil
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// isTextual reports whether a Content-Type value describes text that can
// be scanned for links.
func isTextual(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	if strings.HasSuffix(mediaType, "+xml") || strings.HasSuffix(mediaType, "+json") {
		return true
	}

	switch mediaType {
	case "application/xml", "application/json", "application/javascript",
		"application/ecmascript", "application/x-javascript":
		return true
	default:
		return false
	}
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
// The port must be a number between 1 and 65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" {
		return false
	}

	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}

	return portNum >= 1
}
