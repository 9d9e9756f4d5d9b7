// Package canonical turns raw link candidates into absolute URLs.
//
// Canonicalization is a pure function of the candidate and an optional
// base URL. The first matching rule wins:
//
//  1. a candidate starting with "www" gets an "http://" prefix
//  2. with no base URL, or for a candidate starting with "http", the
//     candidate is kept as is
//  3. anything else is joined to the base URL with exactly one "/"
//
// The "www" rule is checked first. Since no string starts with both
// "www" and "http" the order of rules 1 and 2 is not observable.
package canonical

import "strings"

// Form is the canonical form chosen for a candidate.
// The set of implementations is closed: Original, AddHTTP and AddBase.
type Form interface {
	form()
}

// Original is a link that is already absolute, or any link when no base
// URL is configured.
type Original struct {
	Link string
}

// AddHTTP is a scheme-less "www" link that gets "http://" prepended.
type AddHTTP struct {
	Link string
}

// AddBase is a relative link joined to the base URL.
type AddBase struct {
	Link string
	Base string
}

func (Original) form() {}
func (AddHTTP) form()  {}
func (AddBase) form()  {}

// Render returns the URL string for f.
func Render(f Form) string {
	switch f := f.(type) {
	case Original:
		return f.Link
	case AddHTTP:
		return "http://" + f.Link
	case AddBase:
		return f.Base + "/" + strings.TrimPrefix(f.Link, "/")
	default:
		panic("canonical: unknown form")
	}
}

// NormalizeBase prepares a base URL for joining by removing one trailing
// slash.
func NormalizeBase(base string) string {
	return strings.TrimSuffix(base, "/")
}

// Canonicalizer classifies candidates against a fixed base URL.
// The zero value has no base URL.
type Canonicalizer struct {
	base    string
	hasBase bool
}

// New returns a Canonicalizer for base. An empty string means no base
// URL; anything else is normalized with NormalizeBase, so "/" becomes a
// configured but empty base.
func New(base string) *Canonicalizer {
	return &Canonicalizer{
		base:    NormalizeBase(base),
		hasBase: base != "",
	}
}

// Base returns the normalized base URL and whether one is configured.
func (c *Canonicalizer) Base() (string, bool) {
	return c.base, c.hasBase
}

// Classify picks the canonical form of link.
func (c *Canonicalizer) Classify(link string) Form {
	if strings.HasPrefix(link, "www") {
		return AddHTTP{Link: link}
	}
	if !c.hasBase || strings.HasPrefix(link, "http") {
		return Original{Link: link}
	}
	return AddBase{Link: link, Base: c.base}
}

// Canonicalize returns the canonical URL string for link.
func (c *Canonicalizer) Canonicalize(link string) string {
	return Render(c.Classify(link))
}
