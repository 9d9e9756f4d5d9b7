// Package main provides the entry point for the linkex CLI.
//
// linkex extracts link references from HTML or free text, canonicalizes
// them into absolute URLs, removes duplicates that differ only by scheme
// and prints one link per line.
//
// Usage:
//
//	curl -s https://example.com | linkex https://example.com
//	linkex --all --source https://example.com/page https://example.com
//	linkex history --markdown
//
// See --help for all available options.
package main

func main() {
	Execute()
}
