// Package pipeline runs the link extraction steps in sequence.
//
// A run goes through three steps:
//
//  1. extract: scan the input with an extract.Mode and canonicalize every
//     candidate, materializing the whole sequence once
//  2. dedupe: drop links whose protocol-agnostic key was already seen,
//     keeping the first occurrence
//  3. filter: keep only links containing the configured substring
//
// Filtering runs after deduplication, so a link removed as a duplicate
// is never brought back because its earlier twin was filtered out.
//
// Each step is a Step that reads and narrows model.Run.Links. Steps are
// pure in-memory transformations; the only blocking work (fetching the
// input) happens before the pipeline starts.
package pipeline
