// Package extract discovers link candidates in raw text.
//
// Extraction is pattern based rather than DOM based: the input may be
// HTML, Markdown, a log file or anything else that contains URLs, and it
// is treated as a plain byte sequence. No unescaping, trimming or
// encoding detection is applied to what is found.
//
// # Modes
//
// A Mode decides which patterns are scanned and in which order:
//
//   - HrefOnly yields the value of every href="..." attribute.
//   - FullText yields all href values, then every bare http(s):// URL,
//     then every bare www. URL. Each pass runs left to right over the
//     whole input, so a URL present both as an attribute value and as
//     bare text is reported once per pass.
//
// Candidates are produced lazily as an iter.Seq and are substrings of the
// input; nothing is copied during the scan.
//
// # Known quirks
//
// The bare URL character class includes '.', ',' and ')' so that query
// strings and paths survive intact. A URL at the end of a sentence
// therefore keeps the trailing period:
//
//	"see http://example.com." -> "http://example.com."
//
// This is accepted behavior and is not trimmed.
package extract
