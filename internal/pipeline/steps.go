package pipeline

import (
	"context"
	"strings"

	"github.com/nao1215/linkex/internal/canonical"
	"github.com/nao1215/linkex/internal/extract"
	"github.com/nao1215/linkex/internal/model"
)

// ExtractStep scans the run content for candidates and canonicalizes them.
// The canonicalized sequence is materialized into run.Links in discovery
// order, duplicates included.
type ExtractStep struct {
	mode  extract.Mode
	canon *canonical.Canonicalizer
}

// NewExtractStep creates an extraction step. A nil mode means HrefOnly.
func NewExtractStep(mode extract.Mode, canon *canonical.Canonicalizer) *ExtractStep {
	if mode == nil {
		mode = extract.HrefOnly{}
	}
	if canon == nil {
		canon = canonical.New("")
	}
	return &ExtractStep{mode: mode, canon: canon}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extraction step.
func (s *ExtractStep) Do(_ context.Context, run *model.Run) error {
	run.Mode = s.mode.Name()
	run.Base, _ = s.canon.Base()

	links := make([]string, 0)
	for candidate := range s.mode.Candidates(run.Content) {
		links = append(links, s.canon.Canonicalize(candidate))
	}

	run.Candidates = len(links)
	run.Links = links
	return nil
}

// DedupeStep removes links whose ProtocolAgnosticKey was already seen.
// The first occurrence wins.
type DedupeStep struct{}

// NewDedupeStep creates a deduplication step.
func NewDedupeStep() *DedupeStep {
	return &DedupeStep{}
}

// Name returns the step name.
func (s *DedupeStep) Name() string {
	return "dedupe"
}

// Do executes the deduplication step.
func (s *DedupeStep) Do(_ context.Context, run *model.Run) error {
	unique := Dedupe(run.Links)
	run.Duplicates = len(run.Links) - len(unique)
	run.Links = unique
	return nil
}

// FilterStep keeps only links that contain a literal, case-sensitive
// substring. An empty substring keeps everything.
type FilterStep struct {
	substr string
}

// NewFilterStep creates a filter step for substr.
func NewFilterStep(substr string) *FilterStep {
	return &FilterStep{substr: substr}
}

// Name returns the step name.
func (s *FilterStep) Name() string {
	return "filter"
}

// Do executes the filter step.
func (s *FilterStep) Do(_ context.Context, run *model.Run) error {
	run.Filter = s.substr
	if s.substr == "" {
		return nil
	}

	kept := make([]string, 0, len(run.Links))
	for _, link := range run.Links {
		if strings.Contains(link, s.substr) {
			kept = append(kept, link)
		}
	}

	run.FilteredOut = len(run.Links) - len(kept)
	run.Links = kept
	return nil
}

// DefaultPipelineConfig holds the settings for DefaultPipeline.
type DefaultPipelineConfig struct {
	// Mode selects which patterns are scanned. Nil means HrefOnly.
	Mode extract.Mode

	// Base is the base URL for relative links. Empty means none.
	Base string

	// Filter is the substring filter. Empty means no filtering.
	Filter string
}

// DefaultPipelineOption configures DefaultPipeline.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineMode sets the extraction mode.
func WithPipelineMode(mode extract.Mode) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Mode = mode
	}
}

// WithPipelineBase sets the base URL.
func WithPipelineBase(base string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Base = base
	}
}

// WithPipelineFilter sets the substring filter.
func WithPipelineFilter(filter string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Filter = filter
	}
}

// DefaultPipeline creates the extract, dedupe, filter pipeline.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p := New(pipelineOpts...)
	p.AddSteps(
		NewExtractStep(cfg.Mode, canonical.New(cfg.Base)),
		NewDedupeStep(),
		NewFilterStep(cfg.Filter),
	)
	return p
}
