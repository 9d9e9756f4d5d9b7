package extract

import (
	"iter"
	"regexp"
)

// Mode names as recorded in the history database.
const (
	// ModeNameHref selects HrefOnly.
	ModeNameHref = "href"
	// ModeNameAll selects FullText.
	ModeNameAll = "all"
)

// urlChars is the character class shared by the bare URL patterns: Unicode
// word characters (letters, marks, decimal digits, connector punctuation)
// plus a fixed set of URL punctuation. Angle brackets, quotes and
// whitespace are excluded so that markup around a URL is not swallowed.
const urlChars = `[\p{L}\p{M}\p{Nd}\p{Pc},./?'$%&*()+=-]`

var (
	// hrefPattern captures an attribute value up to the first closing quote.
	// Escaped quotes are not understood.
	hrefPattern = regexp.MustCompile(`href="([^"]*)"`)

	// absolutePattern matches bare http:// and https:// URLs.
	absolutePattern = regexp.MustCompile(`https?://` + urlChars + `+`)

	// wwwPattern matches bare URLs written without a scheme.
	wwwPattern = regexp.MustCompile(`www\.` + urlChars + `+`)
)

// Mode is a pluggable extraction strategy.
type Mode interface {
	// Candidates returns the raw link candidates found in text, in the
	// order defined by the mode. Every candidate is a substring of text.
	Candidates(text string) iter.Seq[string]

	// Name returns the mode name (ModeNameHref or ModeNameAll).
	Name() string
}

// HrefOnly yields the value of every href="..." attribute in document order.
type HrefOnly struct{}

// Candidates implements Mode.
func (HrefOnly) Candidates(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		scan(hrefPattern, 1, text, yield)
	}
}

// Name implements Mode.
func (HrefOnly) Name() string {
	return ModeNameHref
}

// FullText yields href values, then bare http(s) URLs, then bare www URLs.
// The three passes are concatenated in that fixed order.
type FullText struct{}

// Candidates implements Mode.
func (FullText) Candidates(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !scan(hrefPattern, 1, text, yield) {
			return
		}
		if !scan(absolutePattern, 0, text, yield) {
			return
		}
		scan(wwwPattern, 0, text, yield)
	}
}

// Name implements Mode.
func (FullText) Name() string {
	return ModeNameAll
}

// ModeFor returns FullText when all is true and HrefOnly otherwise.
func ModeFor(all bool) Mode {
	if all {
		return FullText{}
	}
	return HrefOnly{}
}

// scan walks text left to right and yields capture group `group` of every
// non-overlapping match of re. It reports false if yield asked to stop.
func scan(re *regexp.Regexp, group int, text string, yield func(string) bool) bool {
	for pos := 0; pos < len(text); {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			return true
		}

		start, end := loc[2*group], loc[2*group+1]
		if start >= 0 {
			if !yield(text[pos+start : pos+end]) {
				return false
			}
		}

		// None of the patterns can match the empty string, but never
		// stall if one is changed to allow it.
		if loc[1] == 0 {
			pos++
			continue
		}
		pos += loc[1]
	}
	return true
}
