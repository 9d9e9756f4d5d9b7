// Package fetch acquires the text that linkex scans.
//
// A Source produces the whole input in one blocking call. Two sources
// exist: ReaderSource reads an io.Reader (standard input) to EOF, and
// HTTPSource issues a single GET request and returns the response body.
//
// HTTPSource can route its request through a SOCKS5 proxy (for example a
// local Tor daemon at 127.0.0.1:9050) using golang.org/x/net/proxy.
// Bodies that declare a non-UTF-8 charset in their Content-Type are
// decoded with golang.org/x/net/html/charset; everything else must already
// be valid UTF-8. A body larger than the configured maximum size is an
// error rather than being cut short.
// Requests are never retried; any failure is returned to the caller,
// which aborts the run.
package fetch
