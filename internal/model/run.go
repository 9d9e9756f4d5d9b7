package model

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"
)

// StdinSource is the Source value recorded for input read from standard input.
const StdinSource = "-"

// Run holds the input, configuration and results of one extraction.
type Run struct {
	// ID is the history database row ID. Zero for runs that were not saved.
	ID int64 `json:"id,omitempty"`

	// Source is the URL the text was fetched from, or StdinSource.
	Source string `json:"source"`

	// Base is the base URL used for joining relative links, already
	// stripped of its trailing slash. Empty when none was configured.
	Base string `json:"base,omitempty"`

	// Mode is the extraction mode name ("href" or "all").
	Mode string `json:"mode"`

	// Filter is the substring filter. Empty means no filtering.
	Filter string `json:"filter,omitempty"`

	// ContentHash is the hex SHA3-256 digest of the input text.
	ContentHash string `json:"contentHash"`

	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp"`

	// Candidates is the number of raw candidates the extractor produced.
	Candidates int `json:"candidates"`

	// Duplicates is the number of links dropped by deduplication.
	Duplicates int `json:"duplicates"`

	// FilteredOut is the number of unique links rejected by the filter.
	FilteredOut int `json:"filteredOut"`

	// Links are the links to emit, in discovery order. Pipeline steps
	// replace this slice as they narrow it down.
	Links []string `json:"links"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performedSteps,omitempty"`

	// Content is the input text. It is never serialized.
	Content string `json:"-"`
}

// NewRun creates a Run for content read from source.
func NewRun(source, content string) *Run {
	return &Run{
		Source:      source,
		Content:     content,
		ContentHash: HashContent(content),
		Timestamp:   time.Now(),
		Links:       make([]string, 0),
	}
}

// HashContent returns the hex SHA3-256 digest of content.
func HashContent(content string) string {
	sum := sha3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
